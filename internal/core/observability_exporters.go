package core

import (
	"context"
	"encoding/json"
	"expvar"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

var expvarNameSeq atomic.Uint64

// OperationStats aggregates the outcomes of one service operation.
type OperationStats struct {
	Success int64   `json:"success"`
	Error   int64   `json:"error"`
	TotalMS float64 `json:"total_ms"`
}

// ExpvarMetricsRecorder keeps per-operation totals in process memory and
// publishes them through the expvar registry, for deployments that scrape
// /debug/vars instead of running a metrics backend.
type ExpvarMetricsRecorder struct {
	name string
	mu   sync.Mutex
	ops  map[string]OperationStats
}

// ExpvarMetricsSnapshot is the value rendered under the recorder's expvar name.
type ExpvarMetricsSnapshot struct {
	Operations map[string]OperationStats `json:"operations"`
	RecordedAt time.Time                 `json:"recorded_at"`
}

// NewExpvarMetricsRecorder publishes a recorder under name. An empty name gets
// a generated one, since expvar panics on duplicate registration.
func NewExpvarMetricsRecorder(name string) *ExpvarMetricsRecorder {
	if name == "" {
		name = fmt.Sprintf("tracker_service_metrics_%d", expvarNameSeq.Add(1))
	}
	rec := &ExpvarMetricsRecorder{name: name, ops: make(map[string]OperationStats)}
	expvar.Publish(name, expvar.Func(func() any { return rec.Snapshot() }))
	return rec
}

// Name returns the expvar name the recorder was published under.
func (r *ExpvarMetricsRecorder) Name() string { return r.name }

// Observe records one operation outcome. Empty operation names are dropped.
func (r *ExpvarMetricsRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	r.mu.Lock()
	stats := r.ops[operation]
	if success {
		stats.Success++
	} else {
		stats.Error++
	}
	stats.TotalMS += float64(duration) / float64(time.Millisecond)
	r.ops[operation] = stats
	r.mu.Unlock()
}

// Snapshot copies the aggregated totals.
func (r *ExpvarMetricsRecorder) Snapshot() ExpvarMetricsSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	ops := make(map[string]OperationStats, len(r.ops))
	for op, stats := range r.ops {
		ops[op] = stats
	}
	return ExpvarMetricsSnapshot{Operations: ops, RecordedAt: time.Now().UTC()}
}

// TraceEvent is one finished span as recorded by JSONTracer.
type TraceEvent struct {
	Operation  string    `json:"operation"`
	Status     string    `json:"status"`
	DurationMS float64   `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	EndedAt    time.Time `json:"ended_at"`
}

// JSONTracer writes one JSON line per finished span and keeps the events in
// memory so diagnostics can read them back without parsing the output.
type JSONTracer struct {
	mu     sync.Mutex
	events []TraceEvent
	enc    *json.Encoder
}

// NewJSONTracer returns a tracer writing to w. A nil writer records events
// without emitting lines.
func NewJSONTracer(w io.Writer) *JSONTracer {
	t := &JSONTracer{}
	if w != nil {
		t.enc = json.NewEncoder(w)
	}
	return t
}

// Entries returns the recorded events in finish order.
func (t *JSONTracer) Entries() []TraceEvent {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]TraceEvent, len(t.events))
	copy(out, t.events)
	return out
}

// Start implements Tracer.
func (t *JSONTracer) Start(ctx context.Context, operation string) (context.Context, TraceSpan) {
	return ctx, &jsonSpan{tracer: t, operation: operation, started: time.Now().UTC()}
}

func (t *JSONTracer) finish(event TraceEvent) {
	t.mu.Lock()
	t.events = append(t.events, event)
	if t.enc != nil {
		_ = t.enc.Encode(event)
	}
	t.mu.Unlock()
}

type jsonSpan struct {
	tracer    *JSONTracer
	operation string
	started   time.Time
}

func (s *jsonSpan) End(err error) {
	ended := time.Now().UTC()
	event := TraceEvent{
		Operation:  s.operation,
		Status:     "success",
		DurationMS: float64(ended.Sub(s.started)) / float64(time.Millisecond),
		StartedAt:  s.started,
		EndedAt:    ended,
	}
	if err != nil {
		event.Status = "error"
		event.Error = err.Error()
	}
	s.tracer.finish(event)
}
