package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"slices"
	"sync"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric/noop"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	apperrors "github.com/kbukum/flowkernel/errors"
	"github.com/kbukum/flowkernel/logger"
	"github.com/kbukum/flowkernel/observability"
	"github.com/kbukum/flowkernel/plan"
	"github.com/kbukum/flowkernel/table"
)

// countingSeq records how many elements a scan actually visited.
type countingSeq struct {
	items   []int
	visited int
}

func (s *countingSeq) Len() int { return len(s.items) }
func (s *countingSeq) At(i int) int {
	s.visited++
	return s.items[i]
}

func newEngine(t *testing.T, tables map[string][]int, opts ...Option) *Engine[int] {
	t.Helper()
	store := table.NewStore[int]()
	for name, values := range tables {
		if err := store.Register(name, values); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}
	opts = append([]Option{WithLogger(logger.Nop())}, opts...)
	return New(store, opts...)
}

var strategies = []plan.Strategy{plan.Pull, plan.Push}

func mainPipeline() plan.Pipeline {
	return plan.New("doubled", plan.Scan("main"), plan.Filter(2), plan.Map(2), plan.Collect())
}

func TestRun_FilterMap(t *testing.T) {
	e := newEngine(t, map[string][]int{"main": {1, 2, 3, 4, 5}})
	for _, s := range strategies {
		t.Run(string(s), func(t *testing.T) {
			got, err := e.Run(context.Background(), mainPipeline(), s)
			if err != nil {
				t.Fatal(err)
			}
			if !slices.Equal(got, []int{6, 8, 10}) {
				t.Errorf("got %v, want [6 8 10]", got)
			}
		})
	}
}

func TestRun_StrategyEquivalence(t *testing.T) {
	tables := map[string][]int{
		"main":  {1, 2, 3, 4, 5},
		"mixed": {-3, 7, 0, 7, 12, -1, 4},
		"empty": {},
	}
	pipelines := []plan.Pipeline{
		plan.New("copy", plan.Scan("mixed"), plan.Collect()),
		plan.New("neg", plan.Scan("mixed"), plan.Map(-1), plan.Filter(-5), plan.Collect()),
		plan.New("twice", plan.Scan("mixed"), plan.Filter(0), plan.Filter(5), plan.Map(3), plan.Map(2), plan.Collect()),
		plan.New("empty", plan.Scan("empty"), plan.Map(2), plan.Collect()),
		mainPipeline(),
	}
	e := newEngine(t, tables)
	for _, p := range pipelines {
		t.Run(p.Name, func(t *testing.T) {
			cmp, err := e.Compare(context.Background(), p)
			if err != nil {
				t.Fatal(err)
			}
			if !cmp.Equal {
				t.Errorf("pull %v != push %v", cmp.Pull, cmp.Push)
			}
		})
	}
}

func TestRun_Idempotent(t *testing.T) {
	e := newEngine(t, map[string][]int{"main": {1, 2, 3, 4, 5}})
	x, err := e.Build(mainPipeline(), plan.Pull)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range strategies {
		first, err := e.Run(context.Background(), mainPipeline(), s)
		if err != nil {
			t.Fatal(err)
		}
		second, err := e.Run(context.Background(), mainPipeline(), s)
		if err != nil {
			t.Fatal(err)
		}
		if !slices.Equal(first, second) {
			t.Errorf("%s: %v != %v", s, first, second)
		}
	}
	// Re-executing the same built chain restarts from the first element.
	a, _ := x.Execute(context.Background(), RunOptions{})
	b, _ := x.Execute(context.Background(), RunOptions{})
	if !slices.Equal(a, b) {
		t.Errorf("re-execution differs: %v != %v", a, b)
	}

	snap, err := e.Store().Lookup("main")
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(snap.Values(), []int{1, 2, 3, 4, 5}) {
		t.Errorf("store mutated: %v", snap.Values())
	}
}

func TestRun_ResultNotShared(t *testing.T) {
	e := newEngine(t, map[string][]int{"main": {1, 2, 3}})
	for _, s := range strategies {
		got, err := e.Run(context.Background(), plan.New("copy", plan.Scan("main"), plan.Collect()), s)
		if err != nil {
			t.Fatal(err)
		}
		got[0] = 99
		snap, _ := e.Store().Lookup("main")
		if snap.At(0) != 1 {
			t.Errorf("%s: result aliases the stored table", s)
		}
	}
}

func TestRun_EmptyOutputs(t *testing.T) {
	e := newEngine(t, map[string][]int{"main": {1, 2, 3}, "empty": {}})
	tests := []struct {
		name string
		p    plan.Pipeline
	}{
		{"empty table", plan.New("e", plan.Scan("empty"), plan.Filter(0), plan.Collect())},
		{"all rejected", plan.New("r", plan.Scan("main"), plan.Filter(100), plan.Collect())},
	}
	for _, tc := range tests {
		for _, s := range strategies {
			t.Run(tc.name+"/"+string(s), func(t *testing.T) {
				got, err := e.Run(context.Background(), tc.p, s)
				if err != nil {
					t.Fatal(err)
				}
				if got == nil || len(got) != 0 {
					t.Errorf("expected empty non-nil result, got %#v", got)
				}
			})
		}
	}
}

func TestRun_IdentityMap(t *testing.T) {
	e := newEngine(t, map[string][]int{"main": {5, 1, 4, 2, 3}})
	for _, s := range strategies {
		filtered, err := e.Run(context.Background(), plan.New("f", plan.Scan("main"), plan.Filter(2), plan.Collect()), s)
		if err != nil {
			t.Fatal(err)
		}
		mapped, err := e.Run(context.Background(), plan.New("fm", plan.Scan("main"), plan.Filter(2), plan.Map(1), plan.Collect()), s)
		if err != nil {
			t.Fatal(err)
		}
		if !slices.Equal(filtered, mapped) || !slices.Equal(mapped, []int{5, 4, 3}) {
			t.Errorf("%s: filtered %v, mapped %v", s, filtered, mapped)
		}
	}
}

func TestRun_PullEarlyTermination(t *testing.T) {
	e := newEngine(t, nil)
	seq := &countingSeq{items: []int{1, 2, 3, 4, 5}}
	p := plan.New("m", plan.Scan("main"), plan.Map(2), plan.Collect())

	x, err := e.build(p, plan.Pull, seq)
	if err != nil {
		t.Fatal(err)
	}
	got, err := x.Execute(context.Background(), RunOptions{Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got, []int{2, 4}) {
		t.Errorf("got %v, want [2 4]", got)
	}
	if seq.visited != 2 {
		t.Errorf("expected 2 visited elements, got %d", seq.visited)
	}
}

func TestRun_PullEarlyTerminationThroughFilter(t *testing.T) {
	e := newEngine(t, nil)
	seq := &countingSeq{items: []int{1, 2, 3, 4, 5}}

	x, err := e.build(mainPipeline(), plan.Pull, seq)
	if err != nil {
		t.Fatal(err)
	}
	got, err := x.Execute(context.Background(), RunOptions{Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got, []int{6, 8}) {
		t.Errorf("got %v, want [6 8]", got)
	}
	if seq.visited != 4 {
		t.Errorf("expected 4 visited elements, got %d", seq.visited)
	}
}

func TestRun_PushVisitsWholeTable(t *testing.T) {
	e := newEngine(t, nil)
	p := plan.New("m", plan.Scan("main"), plan.Map(2), plan.Collect())

	seq := &countingSeq{items: []int{1, 2, 3, 4, 5}}
	x, err := e.build(p, plan.Push, seq)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := x.Execute(context.Background(), RunOptions{}); err != nil {
		t.Fatal(err)
	}
	if seq.visited != 5 {
		t.Errorf("expected 5 visited elements without a limit, got %d", seq.visited)
	}

	limited := &countingSeq{items: []int{1, 2, 3, 4, 5}}
	x, err = e.build(p, plan.Push, limited)
	if err != nil {
		t.Fatal(err)
	}
	got, err := x.Execute(context.Background(), RunOptions{Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got, []int{2, 4}) {
		t.Errorf("got %v, want [2 4]", got)
	}
	if limited.visited != 2 {
		t.Errorf("expected the stop signal to end the scan after 2, got %d", limited.visited)
	}
}

func TestRun_LimitMatchesPrefix(t *testing.T) {
	e := newEngine(t, map[string][]int{"main": {1, 2, 3, 4, 5}})
	for _, s := range strategies {
		for _, limit := range []int{1, 2, 3, 10} {
			got, err := e.Run(context.Background(), mainPipeline(), s, WithLimit(limit))
			if err != nil {
				t.Fatal(err)
			}
			want := []int{6, 8, 10}[:min(limit, 3)]
			if !slices.Equal(got, want) {
				t.Errorf("%s limit %d: got %v, want %v", s, limit, got, want)
			}
		}
	}
}

func TestBuild_Errors(t *testing.T) {
	e := newEngine(t, map[string][]int{"main": {1, 2, 3}})
	tests := []struct {
		name     string
		p        plan.Pipeline
		strategy plan.Strategy
		code     apperrors.ErrorCode
	}{
		{"filter first", plan.New("x", plan.Filter(2), plan.Collect()), plan.Pull, apperrors.ErrCodeInvalidPipeline},
		{"empty", plan.New("x"), plan.Push, apperrors.ErrCodeInvalidPipeline},
		{"unknown table", plan.New("x", plan.Scan("missing"), plan.Collect()), plan.Pull, apperrors.ErrCodeNotFound},
		{"fractional multiplier", plan.New("x", plan.Scan("main"), plan.Map(2.5), plan.Collect()), plan.Pull, apperrors.ErrCodeTypeMismatch},
		{"huge multiplier", plan.New("x", plan.Scan("main"), plan.Map(1e300), plan.Collect()), plan.Push, apperrors.ErrCodeTypeMismatch},
		{"unknown strategy", plan.New("x", plan.Scan("main"), plan.Collect()), "sideways", apperrors.ErrCodeInvalidInput},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			x, err := e.Build(tc.p, tc.strategy)
			if x != nil {
				t.Error("expected nil executable on error")
			}
			if !apperrors.IsCode(err, tc.code) {
				t.Fatalf("expected %s, got %v", tc.code, err)
			}
			got, err := e.Run(context.Background(), tc.p, tc.strategy)
			if got != nil || !apperrors.IsCode(err, tc.code) {
				t.Errorf("Run: expected nil result and %s, got %v, %v", tc.code, got, err)
			}
		})
	}
}

func TestExecutable_ConcurrentExecute(t *testing.T) {
	e := newEngine(t, map[string][]int{"main": {1, 2, 3, 4, 5}})
	for _, s := range strategies {
		x, err := e.Build(mainPipeline(), s)
		if err != nil {
			t.Fatal(err)
		}
		results := make([][]int, 8)
		var wg sync.WaitGroup
		for i := range results {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results[i], _ = x.Execute(context.Background(), RunOptions{})
			}()
		}
		wg.Wait()
		for i, got := range results {
			if !slices.Equal(got, []int{6, 8, 10}) {
				t.Errorf("%s execution %d: got %v, want [6 8 10]", s, i, got)
			}
		}
	}
}

func TestRun_ThresholdOutsideElementType(t *testing.T) {
	e := newEngine(t, map[string][]int{"main": {1, 2, 3, 4, 5}})
	tests := []struct {
		threshold float64
		want      []int
	}{
		{2.5, []int{3, 4, 5}},
		{-0.5, []int{1, 2, 3, 4, 5}},
		{5.5, []int{}},
		{1e19, []int{}},
		{-1e19, []int{1, 2, 3, 4, 5}},
	}
	for _, tc := range tests {
		p := plan.New("bound", plan.Scan("main"), plan.Filter(tc.threshold), plan.Collect())
		for _, s := range strategies {
			got, err := e.Run(context.Background(), p, s)
			if err != nil {
				t.Fatalf("threshold %v %s: %v", tc.threshold, s, err)
			}
			if !slices.Equal(got, tc.want) {
				t.Errorf("threshold %v %s: got %v, want %v", tc.threshold, s, got, tc.want)
			}
		}
	}
}

func TestBuild_StrategyFallback(t *testing.T) {
	e := newEngine(t, map[string][]int{"main": {1}}, WithDefaultStrategy(plan.Push))

	p := plan.New("x", plan.Scan("main"), plan.Collect())
	x, err := e.Build(p, "")
	if err != nil {
		t.Fatal(err)
	}
	if x.Strategy() != plan.Push {
		t.Errorf("expected engine default push, got %s", x.Strategy())
	}

	p.Strategy = plan.Pull
	x, err = e.Build(p, "")
	if err != nil {
		t.Fatal(err)
	}
	if x.Strategy() != plan.Pull {
		t.Errorf("expected pipeline strategy pull, got %s", x.Strategy())
	}
	if x.Pipeline().Name != "x" {
		t.Errorf("unexpected pipeline %q", x.Pipeline().Name)
	}
}

func TestRun_FloatElements(t *testing.T) {
	store := table.NewStore[float64]()
	if err := store.Register("main", []float64{0.5, 1.5, 2.5}); err != nil {
		t.Fatal(err)
	}
	e := New(store, WithLogger(logger.Nop()))
	p := plan.New("f", plan.Scan("main"), plan.Filter(1.25), plan.Map(0.5), plan.Collect())
	for _, s := range strategies {
		got, err := e.Run(context.Background(), p, s)
		if err != nil {
			t.Fatal(err)
		}
		if !slices.Equal(got, []float64{0.75, 1.25}) {
			t.Errorf("%s: got %v", s, got)
		}
	}
}

func TestRun_Cancelled(t *testing.T) {
	e := newEngine(t, map[string][]int{"main": {1, 2, 3}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, s := range strategies {
		got, err := e.Run(ctx, mainPipeline(), s)
		if got != nil {
			t.Errorf("%s: expected nil result, got %v", s, got)
		}
		if !apperrors.IsCode(err, apperrors.ErrCodeCancelled) {
			t.Errorf("%s: expected CANCELLED, got %v", s, err)
		}
	}
}

func TestExecute_NegativeLimit(t *testing.T) {
	e := newEngine(t, map[string][]int{"main": {1}})
	_, err := e.Run(context.Background(), mainPipeline(), plan.Pull, WithLimit(-1))
	if !apperrors.IsCode(err, apperrors.ErrCodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}

func TestExecute_Logging(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&logger.Config{Level: "debug", Format: "json"}, "flowkernel", &buf)
	store := table.NewStore[int]()
	_ = store.Register("main", []int{1, 2, 3, 4, 5})
	e := New(store, WithLogger(log))

	_, err := e.Run(context.Background(), mainPipeline(), plan.Push, WithExecutionID("exec-1"))
	if err != nil {
		t.Fatal(err)
	}

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if entry[logger.FieldExecutionID] != "exec-1" {
		t.Errorf("expected execution id in log, got %v", entry)
	}
	if entry[logger.FieldStrategy] != "push" || entry[logger.FieldItems] != float64(3) {
		t.Errorf("unexpected log fields: %v", entry)
	}
	if entry[logger.FieldComponent] != "engine" {
		t.Errorf("expected engine component, got %v", entry[logger.FieldComponent])
	}
}

func TestExecute_TracingAndMetrics(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})

	metrics, err := observability.NewMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatal(err)
	}
	e := newEngine(t, map[string][]int{"main": {1, 2, 3, 4, 5}}, WithTracing(true), WithMetrics(metrics))

	if _, err := e.Run(context.Background(), mainPipeline(), plan.Pull); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()
	if _, err := e.Run(ctx, mainPipeline(), plan.Push); err == nil {
		t.Fatal("expected error from expired context")
	}

	spans := exporter.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	for _, s := range spans {
		if s.Name != observability.SpanRun {
			t.Errorf("unexpected span %q", s.Name)
		}
	}
	var sawError bool
	for _, kv := range spans[1].Attributes {
		if kv.Key == observability.AttrErrorCode {
			sawError = kv.Value.AsString() == string(apperrors.ErrCodeCancelled)
		}
	}
	if !sawError {
		t.Errorf("expected CANCELLED error code on the failed span, got %v", spans[1].Attributes)
	}
}
