package internaldefs

import (
	"github.com/MrEthical07/tokengrip"
)

// CounterDef maps a Grip counter to its exported name.
type CounterDef struct {
	ID   tokengrip.MetricID
	Name string
	Help string
}

// HistogramDef maps a Grip histogram to its exported name.
type HistogramDef struct {
	ID   tokengrip.MetricID
	Name string
	Help string
}

var CounterDefs = []CounterDef{
	{ID: tokengrip.MetricSignSuccess, Name: "tokengrip_sign_success_total", Help: "Tokens issued by Sign."},
	{ID: tokengrip.MetricSignFailure, Name: "tokengrip_sign_failure_total", Help: "Sign calls that returned an error."},
	{ID: tokengrip.MetricVerifyFresh, Name: "tokengrip_verify_fresh_total", Help: "Tokens verified under the current key and algorithm."},
	{ID: tokengrip.MetricVerifyReissued, Name: "tokengrip_verify_reissued_total", Help: "Tokens verified under a deprecated key or algorithm and reissued."},
	{ID: tokengrip.MetricInvalidSignature, Name: "tokengrip_invalid_signature_total", Help: "Tokens no configured key could verify."},
	{ID: tokengrip.MetricMalformedToken, Name: "tokengrip_malformed_token_total", Help: "Tokens rejected before any key was tried."},
	{ID: tokengrip.MetricConfigurationError, Name: "tokengrip_configuration_error_total", Help: "Calls rejected because of missing keys, algorithms or digests."},
}

var HistogramDefs = []HistogramDef{
	{ID: tokengrip.MetricVerifyLatency, Name: "tokengrip_verify_latency_seconds", Help: "Signature check latency histogram."},
}

// HistogramBounds are the upper bounds, in seconds, of the Grip latency buckets.
var HistogramBounds = []string{
	"0.000005",
	"0.00001",
	"0.000025",
	"0.00005",
	"0.0001",
	"0.00025",
	"0.0005",
	"+Inf",
}

// HistogramBoundSuffix names each bucket where a label cannot be used.
var HistogramBoundSuffix = []string{
	"5us",
	"10us",
	"25us",
	"50us",
	"100us",
	"250us",
	"500us",
	"inf",
}

// NormalizeBuckets pads or truncates raw to the fixed bucket count.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
