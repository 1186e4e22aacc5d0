package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"github.com/MrEthical07/tokengrip"
	"github.com/MrEthical07/tokengrip/format"
)

// parseFlags reports the exit code to stop with, or -1 to continue.
func parseFlags(fs *pflag.FlagSet, args []string) int {
	err := fs.Parse(args)
	switch {
	case err == nil:
		return -1
	case errors.Is(err, pflag.ErrHelp):
		return exitOK
	default:
		return exitUsage
	}
}

// input returns the single positional argument, or stdin when it is absent or "-".
func input(args []string, stdin io.Reader) (string, error) {
	if len(args) > 1 {
		return "", errors.New("expected at most one argument")
	}
	if len(args) == 1 && args[0] != "-" {
		return strings.TrimSpace(args[0]), nil
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func fail(stderr io.Writer, code int, err error) int {
	fmt.Fprintf(stderr, "tokengrip: %v\n", err)
	return code
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runSign(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := newFlagSet("sign", stderr)
	addGripFlags(fs)
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}

	grip, err := loadGrip(fs, stderr)
	if err != nil {
		return fail(stderr, exitUsage, err)
	}

	payload, err := input(fs.Args(), stdin)
	if err != nil {
		return fail(stderr, exitUsage, err)
	}
	if !json.Valid([]byte(payload)) {
		return fail(stderr, exitUsage, errors.New("payload is not valid JSON"))
	}

	token, err := grip.Sign(json.RawMessage(payload))
	if err != nil {
		return fail(stderr, exitRejected, err)
	}
	fmt.Fprintln(stdout, token)
	return exitOK
}

type verifyOutput struct {
	Payload  json.RawMessage `json:"payload,omitempty"`
	NewToken string          `json:"new_token,omitempty"`
}

func runVerify(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := newFlagSet("verify", stderr)
	addGripFlags(fs)
	checkOnly := fs.Bool("check", false, "check the signature only; do not decode the payload")
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}

	grip, err := loadGrip(fs, stderr)
	if err != nil {
		return fail(stderr, exitUsage, err)
	}
	token, err := input(fs.Args(), stdin)
	if err != nil {
		return fail(stderr, exitUsage, err)
	}

	var out verifyOutput
	if *checkOnly {
		out.NewToken, err = grip.CheckSignature(token)
	} else {
		out.NewToken, err = grip.VerifyInto(token, &out.Payload)
	}
	if err != nil {
		code := exitRejected
		if tokengrip.KindOf(err) == tokengrip.KindConfiguration {
			code = exitUsage
		}
		return fail(stderr, code, err)
	}

	if err := writeJSON(stdout, out); err != nil {
		return fail(stderr, exitRejected, err)
	}
	return exitOK
}

type inspectOutput struct {
	Format    string `json:"format"`
	Algorithm string `json:"algorithm,omitempty"`
	Payload   any    `json:"payload,omitempty"`
	Verified  bool   `json:"verified"`
}

func runInspect(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := newFlagSet("inspect", stderr)
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}
	token, err := input(fs.Args(), stdin)
	if err != nil {
		return fail(stderr, exitUsage, err)
	}

	info := format.Inspect(token)
	if info.Format == format.Unknown {
		return fail(stderr, exitRejected, errors.New("not a Tokengrip token or JWT"))
	}
	if err := writeJSON(stdout, inspectOutput{
		Format:    info.Format.String(),
		Algorithm: info.Algorithm,
		Payload:   info.Payload,
	}); err != nil {
		return fail(stderr, exitRejected, err)
	}
	return exitOK
}

func runDetect(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := newFlagSet("detect", stderr)
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}
	token, err := input(fs.Args(), stdin)
	if err != nil {
		return fail(stderr, exitUsage, err)
	}

	f := format.Detect(token)
	fmt.Fprintln(stdout, f)
	if f == format.Unknown {
		return exitRejected
	}
	return exitOK
}

func runLint(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("lint", stderr)
	addGripFlags(fs)
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}

	v, err := loadConfig(fs)
	if err != nil {
		return fail(stderr, exitUsage, err)
	}
	grip, err := gripFromConfig(v, newLogger(fs, stderr))
	if err != nil {
		return fail(stderr, exitUsage, err)
	}

	findings := grip.Lint()
	for _, w := range findings {
		fmt.Fprintf(stdout, "%-5s %-22s %s\n", w.Severity, w.Code, w.Message)
	}
	if len(findings.AtLeast(tokengrip.LintHigh)) > 0 {
		return exitRejected
	}
	return exitOK
}

func runAlgorithms(stdout io.Writer) int {
	for _, name := range tokengrip.SupportedAlgorithms() {
		fmt.Fprintln(stdout, name)
	}
	return exitOK
}
