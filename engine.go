package credkit

import (
	"context"
	"fmt"
	"time"

	"github.com/credkit/credkit/breach"
	"github.com/credkit/credkit/password"
	"github.com/credkit/credkit/token"
)

// Engine is the credential and token security engine. It is a pure function
// of its inputs plus the immutable configuration captured at Build time; it
// persists nothing and performs no I/O of its own on the hot path. All
// methods are safe for concurrent use.
type Engine struct {
	config      Config
	hasher      password.Hasher
	hashers     map[password.Algorithm]password.Hasher
	breach      breach.Checker
	tokens      *token.Manager
	revocations token.RevocationStore
	metrics     *Metrics
	audit       *auditDispatcher
}

// Close flushes the audit dispatcher. The engine must not be used after
// Close.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// MetricsSnapshot returns a point-in-time copy of the engine metrics.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// AuditDropped reports how many audit events were dropped because the
// dispatcher buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) metricObserve(id MetricID, d time.Duration) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Observe(id, d)
}

func (e *Engine) auditEmit(ctx context.Context, event AuditEvent) {
	if e == nil || e.audit == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	e.audit.Emit(ctx, event)
}

// HashPassword converts a raw password into a credential record using the
// configured strategy. When breach checking is enabled the checker runs
// first and a positive hit aborts hashing with the actionable reason
// wrapped around ErrPasswordBreached. Hashing time feeds the latency
// histogram for capacity planning.
func (e *Engine) HashPassword(ctx context.Context, pw string) (password.Record, error) {
	if e == nil || e.hasher == nil {
		return password.Record{}, ErrEngineNotReady
	}
	if pw == "" {
		return password.Record{}, password.ErrEmptyPassword
	}

	if e.breach != nil {
		result, err := e.breach.Check(ctx, pw)
		if err != nil {
			return password.Record{}, err
		}
		if result.Breached {
			e.metricInc(MetricPasswordBreachRejected)
			e.auditEmit(ctx, AuditEvent{
				EventType: AuditPasswordBreachRejected,
				Error:     result.Reason,
			})
			return password.Record{}, fmt.Errorf("%w: %s", ErrPasswordBreached, result.Reason)
		}
	}

	start := time.Now()
	encoded, err := e.hasher.Hash(pw)
	e.metricObserve(MetricHashLatency, time.Since(start))
	if err != nil {
		return password.Record{}, err
	}

	e.metricInc(MetricPasswordHashed)
	e.auditEmit(ctx, AuditEvent{EventType: AuditPasswordHashed, Success: true})

	return password.Record{
		Algorithm: e.hasher.Algorithm(),
		Hash:      encoded,
		Params:    e.hasher.Params(),
		CreatedAt: time.Now().UTC(),
	}, nil
}

// VerifyPassword checks a presented password against a stored credential
// record. The record's algorithm tag dictates the strategy; an unknown tag
// fails closed. Observable duration is padded to the configured floor on
// every path, so algorithm cost differences do not leak which strategy ran
// or how it failed.
func (e *Engine) VerifyPassword(ctx context.Context, pw string, record password.Record) (ok bool, err error) {
	if e == nil || len(e.hashers) == 0 {
		return false, ErrEngineNotReady
	}

	start := time.Now()
	defer func() {
		elapsed := time.Since(start)
		if floor := e.config.Password.MinVerifyDuration; elapsed < floor {
			time.Sleep(floor - elapsed)
		}
		e.metricObserve(MetricVerifyLatency, time.Since(start))
	}()

	hasher, known := e.hashers[record.Algorithm]
	if !known {
		e.metricInc(MetricPasswordVerifyFailure)
		return false, fmt.Errorf("%w: %q", password.ErrUnknownAlgorithm, record.Algorithm)
	}

	ok, err = hasher.Verify(pw, record.Hash)
	if err != nil {
		e.metricInc(MetricPasswordVerifyFailure)
		return false, err
	}

	if ok {
		e.metricInc(MetricPasswordVerifySuccess)
	} else {
		e.metricInc(MetricPasswordVerifyFailure)
	}
	e.auditEmit(ctx, AuditEvent{EventType: AuditPasswordVerified, Success: ok})

	return ok, nil
}

// CheckPasswordHistory reports whether candidate matches one of the most
// recent history entries, up to the configured limit, and at which 1-based
// position. History tracking disabled means never reused.
func (e *Engine) CheckPasswordHistory(ctx context.Context, candidate string, history []string) (bool, int) {
	if e == nil || !e.config.Password.TrackHistory {
		return false, 0
	}

	reused, position := password.CheckHistory(candidate, history, e.config.Password.HistoryLimit)
	if reused {
		e.metricInc(MetricPasswordReuseDetected)
		e.auditEmit(ctx, AuditEvent{
			EventType: AuditPasswordReuseDetected,
			Metadata:  map[string]string{"position": fmt.Sprintf("%d", position)},
		})
	}
	return reused, position
}

// CheckBreach runs the configured breach checker directly, for callers that
// want the verdict without hashing.
func (e *Engine) CheckBreach(ctx context.Context, pw string) (breach.Result, error) {
	if e == nil {
		return breach.Result{}, ErrEngineNotReady
	}
	if e.breach == nil {
		return breach.Result{}, nil
	}
	return e.breach.Check(ctx, pw)
}

// NeedsRehash reports whether a stored credential should be rehashed: its
// algorithm differs from the configured one, or its parameters are weaker
// than the current configuration.
func (e *Engine) NeedsRehash(record password.Record) (bool, error) {
	if e == nil || e.hasher == nil {
		return false, ErrEngineNotReady
	}
	if record.Algorithm != e.hasher.Algorithm() {
		return true, nil
	}
	return e.hasher.NeedsRehash(record.Hash)
}
