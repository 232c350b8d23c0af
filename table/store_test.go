package table

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	apperrors "github.com/kbukum/flowkernel/errors"
)

func TestStore_RegisterLookup(t *testing.T) {
	s := NewStore[int]()
	if err := s.Register("main", []int{1, 2, 3}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	snap, err := s.Lookup("main")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Name() != "main" || snap.Len() != 3 || snap.At(2) != 3 {
		t.Fatalf("unexpected snapshot: %v", snap.Values())
	}
}

func TestStore_LookupMissing(t *testing.T) {
	s := NewStore[int]()
	_, err := s.Lookup("nope")
	if !apperrors.IsCode(err, apperrors.ErrCodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestStore_RegisterEmptyName(t *testing.T) {
	s := NewStore[int]()
	if err := s.Register("", []int{1}); !apperrors.IsCode(err, apperrors.ErrCodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}

func TestStore_RegisterCopiesInput(t *testing.T) {
	s := NewStore[int]()
	in := []int{1, 2, 3}
	_ = s.Register("main", in)
	in[0] = 100

	snap, _ := s.Lookup("main")
	if snap.At(0) != 1 {
		t.Fatalf("caller mutation leaked into store: %v", snap.Values())
	}
}

func TestStore_ReplaceKeepsOldSnapshot(t *testing.T) {
	s := NewStore[int]()
	_ = s.Register("main", []int{1, 2})
	old, _ := s.Lookup("main")

	_ = s.Register("main", []int{9})
	cur, _ := s.Lookup("main")

	if old.Len() != 2 || old.At(0) != 1 {
		t.Errorf("old snapshot changed: %v", old.Values())
	}
	if cur.Len() != 1 || cur.At(0) != 9 {
		t.Errorf("expected replaced table, got %v", cur.Values())
	}
}

func TestStore_RegisterNilIsEmptyTable(t *testing.T) {
	s := NewStore[int]()
	_ = s.Register("empty", nil)
	snap, err := s.Lookup("empty")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Len() != 0 {
		t.Fatalf("expected empty table, got %v", snap.Values())
	}
}

func TestSnapshot_ValuesIsCopy(t *testing.T) {
	s := NewStore[int]()
	_ = s.Register("main", []int{1, 2})
	snap, _ := s.Lookup("main")
	vals := snap.Values()
	vals[0] = 42
	if snap.At(0) != 1 {
		t.Fatal("Values() must not expose the stored slice")
	}
}

func TestStore_NamesSorted(t *testing.T) {
	s := NewStore[int]()
	_ = s.Register("b", nil)
	_ = s.Register("a", nil)
	_ = s.Register("c", nil)
	names := s.Names()
	if len(names) != 3 || names[0] != "a" || names[1] != "b" || names[2] != "c" {
		t.Fatalf("unexpected names: %v", names)
	}
	if s.Len() != 3 || !s.Has("b") || s.Has("d") {
		t.Fatal("unexpected Len/Has results")
	}
}

func TestStore_ConcurrentLookup(t *testing.T) {
	s := NewStore[int]()
	_ = s.Register("main", []int{1, 2, 3})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snap, err := s.Lookup("main")
			if err != nil || snap.Len() != 3 {
				t.Errorf("unexpected lookup result: %v %v", snap.Values(), err)
			}
		}()
	}
	wg.Wait()
}

func TestParse(t *testing.T) {
	s := NewStore[float64]()
	doc := []byte(`
tables:
  main: [1, 2, 3.5]
  empty: []
`)
	names, err := Parse(doc, s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(names) != 2 || names[0] != "empty" || names[1] != "main" {
		t.Fatalf("unexpected names: %v", names)
	}
	snap, _ := s.Lookup("main")
	if snap.At(2) != 3.5 {
		t.Errorf("expected 3.5, got %v", snap.At(2))
	}
}

func TestParse_JSON(t *testing.T) {
	s := NewStore[int]()
	if _, err := Parse([]byte(`{"tables":{"main":[1,2,3]}}`), s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.Has("main") {
		t.Fatal("expected main to be registered")
	}
}

func TestParse_Invalid(t *testing.T) {
	s := NewStore[int]()
	if _, err := Parse([]byte("tables: [not, a, map"), s); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tables.yaml")
	if err := os.WriteFile(path, []byte("tables:\n  main: [1, 2]\n"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	s := NewStore[int]()
	if _, err := LoadFile(path, s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := LoadFile(filepath.Join(dir, "missing.yaml"), s); err == nil {
		t.Fatal("expected error for missing file")
	}
}
