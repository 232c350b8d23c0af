package plan

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	apperrors "github.com/kbukum/flowkernel/errors"
)

func ptr(v float64) *float64 { return &v }

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		pipeline Pipeline
		wantErr  bool
	}{
		{"scan collect", New("p", Scan("main"), Collect()), false},
		{"full chain", New("p", Scan("main"), Filter(2), Map(2), Collect()), false},
		{"repeated interior", New("p", Scan("main"), Map(2), Map(3), Filter(0), Collect()), false},
		{"empty", New("p"), true},
		{"single scan", New("p", Scan("main")), true},
		{"filter first", New("p", Filter(2), Collect()), true},
		{"missing collect", New("p", Scan("main"), Filter(2)), true},
		{"two scans", New("p", Scan("main"), Scan("other"), Collect()), true},
		{"interior collect", New("p", Scan("main"), Collect(), Collect()), true},
		{"scan without table", New("p", Scan(""), Collect()), true},
		{"filter without threshold", New("p", Scan("main"), OperatorSpec{Kind: KindFilter}, Collect()), true},
		{"map without multiplier", New("p", Scan("main"), OperatorSpec{Kind: KindMap}, Collect()), true},
		{"filter with table", New("p", Scan("main"), OperatorSpec{Kind: KindFilter, Table: "x", Threshold: ptr(1)}, Collect()), true},
		{"collect with param", New("p", Scan("main"), OperatorSpec{Kind: KindCollect, Multiplier: ptr(2)}), true},
		{"unknown kind", New("p", Scan("main"), OperatorSpec{Kind: "explode"}, Collect()), true},
		{"bad strategy", Pipeline{Strategy: "sideways", Stages: []OperatorSpec{Scan("main"), Collect()}}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.pipeline)
			if !tc.wantErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !apperrors.IsCode(err, apperrors.ErrCodeInvalidPipeline) {
				t.Fatalf("expected INVALID_PIPELINE, got %v", err)
			}
		})
	}
}

func TestValidate_FilterCollect(t *testing.T) {
	err := Validate(New("", Filter(2), Collect()))
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %v", err)
	}
	if appErr.Code != apperrors.ErrCodeInvalidPipeline {
		t.Errorf("expected INVALID_PIPELINE, got %s", appErr.Code)
	}
	if appErr.HTTPStatus != 400 {
		t.Errorf("expected 400, got %d", appErr.HTTPStatus)
	}
	if !strings.Contains(appErr.Message, "stages[0].kind: must be one of: scan, got filter") {
		t.Errorf("unexpected message %q", appErr.Message)
	}
}

func TestValidate_ParamMessages(t *testing.T) {
	p := New("p", Scan("main"), OperatorSpec{Kind: KindFilter, Table: "x"}, Collect())
	err := Validate(p)
	for _, want := range []string{
		"stages[1].table: is not allowed for filter",
		"stages[1].threshold: is required",
	} {
		if err == nil || !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %v", want, err)
		}
	}
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in      string
		want    Strategy
		wantErr bool
	}{
		{"", Push, false},
		{"pull", Pull, false},
		{" PUSH ", Push, false},
		{"sideways", "", true},
	}
	for _, tc := range tests {
		got, err := ParseStrategy(tc.in, Push)
		if tc.wantErr {
			if !apperrors.IsCode(err, apperrors.ErrCodeInvalidInput) {
				t.Errorf("%q: expected INVALID_INPUT, got %v", tc.in, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("%q: expected %s, got %s (%v)", tc.in, tc.want, got, err)
		}
	}
}

func TestParseStrategy_ListsChoices(t *testing.T) {
	_, err := ParseStrategy("sideways", Pull)
	if err == nil || !strings.Contains(err.Error(), "[pull push]") {
		t.Errorf("expected the error to list every strategy, got %v", err)
	}
	for _, s := range Strategies {
		if got, err := ParseStrategy(string(s), Pull); err != nil || got != s {
			t.Errorf("%s: expected round trip, got %s (%v)", s, got, err)
		}
	}
}

func TestPipelineString(t *testing.T) {
	p := New("p", Scan("main"), Filter(2), Map(1.5), Collect())
	want := "scan(main) -> filter(>2) -> map(*1.5) -> collect"
	if got := p.String(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	if p.Table() != "main" {
		t.Errorf("expected table main, got %q", p.Table())
	}
	if New("p", Filter(1)).Table() != "" {
		t.Error("expected empty table when first stage is not a scan")
	}
}

func TestParseYAML(t *testing.T) {
	doc := `
name: doubled
strategy: push
stages:
  - kind: scan
    table: main
  - kind: filter
    threshold: 0
  - kind: map
    multiplier: 2
  - kind: collect
`
	p, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "doubled" || p.Strategy != Push {
		t.Errorf("unexpected header: %+v", p)
	}
	if len(p.Stages) != 4 {
		t.Fatalf("expected 4 stages, got %d", len(p.Stages))
	}
	if p.Stages[1].Threshold == nil || *p.Stages[1].Threshold != 0 {
		t.Error("expected explicit zero threshold to be kept")
	}
	if p.Stages[1].Multiplier != nil {
		t.Error("expected absent multiplier to stay nil")
	}
	if err := Validate(*p); err != nil {
		t.Errorf("expected valid pipeline, got %v", err)
	}
}

func TestParseJSON(t *testing.T) {
	doc := `{"stages":[{"kind":"scan","table":"main"},{"kind":"collect"}]}`
	p, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Stages) != 2 || p.Stages[0].Table != "main" {
		t.Errorf("unexpected pipeline: %+v", p)
	}
}

func TestParseMalformed(t *testing.T) {
	_, err := Parse([]byte("stages: [unterminated"))
	if !apperrors.IsCode(err, apperrors.ErrCodeInvalidPipeline) {
		t.Fatalf("expected INVALID_PIPELINE, got %v", err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

const simpleDoc = "stages:\n  - kind: scan\n    table: main\n  - kind: collect\n"

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "simple.yaml")
	writeFile(t, path, simpleDoc)

	p, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "simple" {
		t.Errorf("expected name from file, got %q", p.Name)
	}

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	if !apperrors.IsCode(err, apperrors.ErrCodeNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestFilePipelineLoader(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	writeFile(t, filepath.Join(first, "a.yaml"), "name: from-first\n"+simpleDoc)
	writeFile(t, filepath.Join(second, "a.yml"), "name: from-second\n"+simpleDoc)
	writeFile(t, filepath.Join(second, "b.json"), `{"stages":[{"kind":"scan","table":"t"},{"kind":"collect"}]}`)
	writeFile(t, filepath.Join(second, "nested", "c.yaml"), simpleDoc)

	l := NewFilePipelineLoader(first, second)

	p, err := l.Load("a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "from-first" {
		t.Errorf("expected first directory to win, got %q", p.Name)
	}

	p, err = l.Load("b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Table() != "t" {
		t.Errorf("expected table t, got %q", p.Table())
	}

	if _, err := l.Load("c"); err != nil {
		t.Errorf("expected nested pipeline to load, got %v", err)
	}

	_, err = l.Load("missing")
	if !apperrors.IsCode(err, apperrors.ErrCodeNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}

	_, err = l.Load("../a")
	if !apperrors.IsCode(err, apperrors.ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT for path-like name, got %v", err)
	}

	names := l.Names()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("expected [a b], got %v", names)
	}
}
