// Command tokengrip signs, verifies and inspects Tokengrip tokens from the shell.
//
// Keys and algorithms come from repeated flags, a config file, or the TOKENGRIP_KEYS
// and TOKENGRIP_ALGORITHMS environment variables (space separated), in that order of
// precedence. The first key and algorithm are current; the rest only verify.
//
//	tokengrip sign --key s1 '{"page":2}'
//	tokengrip verify --key s2 --key s1 <token>
//	tokengrip verify --config keys.yaml < token.txt
//	tokengrip inspect <token>
//	tokengrip detect <token>
//	tokengrip algorithms
//
// A config file holds the same lists:
//
//	keys: [s2, s1]
//	algorithms: [sha256, sha1]
package main

import (
	"fmt"
	"io"
	"os"
)

const (
	exitOK       = 0
	exitRejected = 1
	exitUsage    = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return exitUsage
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "sign":
		return runSign(rest, stdin, stdout, stderr)
	case "verify":
		return runVerify(rest, stdin, stdout, stderr)
	case "inspect":
		return runInspect(rest, stdin, stdout, stderr)
	case "detect":
		return runDetect(rest, stdin, stdout, stderr)
	case "lint":
		return runLint(rest, stdout, stderr)
	case "algorithms":
		return runAlgorithms(stdout)
	case "help", "-h", "--help":
		usage(stdout)
		return exitOK
	default:
		fmt.Fprintf(stderr, "tokengrip: unknown command %q\n", cmd)
		usage(stderr)
		return exitUsage
	}
}

func usage(w io.Writer) {
	fmt.Fprint(w, `usage: tokengrip <command> [flags] [argument]

commands:
  sign        sign a JSON payload (argument or stdin)
  verify      verify a token and print its payload and any replacement token
  inspect     decode a token without verifying it
  detect      print the token format: tokengrip, jwt or unknown
  lint        report questionable key and algorithm settings
  algorithms  list supported algorithms
`)
}
