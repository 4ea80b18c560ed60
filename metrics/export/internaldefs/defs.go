package internaldefs

import (
	credkit "github.com/credkit/credkit"
)

// CounterDef names one engine counter for export.
type CounterDef struct {
	ID   credkit.MetricID
	Name string
	Help string
}

// HistogramDef names one engine latency histogram for export.
type HistogramDef struct {
	ID   credkit.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter.
var CounterDefs = []CounterDef{
	{ID: credkit.MetricPasswordHashed, Name: "credkit_password_hashed_total", Help: "Successful password hash operations."},
	{ID: credkit.MetricPasswordBreachRejected, Name: "credkit_password_breach_rejected_total", Help: "Passwords rejected by the breach/policy check."},
	{ID: credkit.MetricPasswordVerifySuccess, Name: "credkit_password_verify_success_total", Help: "Successful password verifications."},
	{ID: credkit.MetricPasswordVerifyFailure, Name: "credkit_password_verify_failure_total", Help: "Failed password verifications."},
	{ID: credkit.MetricPasswordReuseDetected, Name: "credkit_password_reuse_detected_total", Help: "History checks that detected password reuse."},
	{ID: credkit.MetricAccessIssued, Name: "credkit_access_issued_total", Help: "Issued access tokens."},
	{ID: credkit.MetricRefreshIssued, Name: "credkit_refresh_issued_total", Help: "Issued refresh tokens."},
	{ID: credkit.MetricTokenVerifySuccess, Name: "credkit_token_verify_success_total", Help: "Successful token verifications."},
	{ID: credkit.MetricTokenVerifyFailure, Name: "credkit_token_verify_failure_total", Help: "Failed token verifications."},
	{ID: credkit.MetricRefreshRotated, Name: "credkit_refresh_rotated_total", Help: "Refresh calls that reissued the refresh token."},
	{ID: credkit.MetricRefreshPreserved, Name: "credkit_refresh_preserved_total", Help: "Refresh calls that kept the presented refresh token."},
	{ID: credkit.MetricTokenRevoked, Name: "credkit_token_revoked_total", Help: "Revoked token ids, family markers included."},
}

// HistogramDefs lists every exported latency histogram.
var HistogramDefs = []HistogramDef{
	{ID: credkit.MetricHashLatency, Name: "credkit_hash_duration_seconds", Help: "Password hashing duration."},
	{ID: credkit.MetricVerifyLatency, Name: "credkit_verify_duration_seconds", Help: "Password verification duration, padding included."},
}

// HistogramBounds are the upper bucket bounds in seconds, matching the
// engine's fixed bucket layout.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix mirrors HistogramBounds with instrument-name-safe
// spellings for exporters that cannot use labels.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates a raw snapshot slice to the fixed
// bucket array.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into the cumulative form
// both exposition formats expect.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
