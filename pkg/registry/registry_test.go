package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/arthur-debert/rulekit/pkg/errors"
)

// testRule stands in for a workflow rule
type testRule struct {
	Name     string
	Priority int
}

func TestNew(t *testing.T) {
	reg := New[testRule]()

	if reg == nil {
		t.Fatal("New() returned nil")
	}

	if reg.Count() != 0 {
		t.Errorf("New registry should be empty, got count %d", reg.Count())
	}
}

func TestRegister(t *testing.T) {
	reg := New[testRule]()

	t.Run("register_valid_item", func(t *testing.T) {
		if err := reg.Register("align", testRule{Name: "align"}); err != nil {
			t.Fatalf("Register() error = %v, want nil", err)
		}

		if reg.Count() != 1 {
			t.Errorf("Count() = %d, want 1", reg.Count())
		}
		if !reg.Has("align") {
			t.Error("Has(align) = false after Register()")
		}
	})

	t.Run("register_with_empty_name", func(t *testing.T) {
		err := reg.Register("", testRule{})

		if !errors.IsErrorCode(err, errors.ErrInvalidInput) {
			t.Errorf("Register() with empty name should return ErrInvalidInput, got %v", err)
		}
	})

	t.Run("register_duplicate", func(t *testing.T) {
		err := reg.Register("align", testRule{Name: "align", Priority: 2})

		if !errors.IsErrorCode(err, errors.ErrAlreadyExists) {
			t.Errorf("Register() duplicate should return ErrAlreadyExists, got %v", err)
		}

		got, _ := reg.Get("align")
		if got.Priority != 0 {
			t.Errorf("duplicate registration replaced the original: %+v", got)
		}
	})
}

func TestGet(t *testing.T) {
	reg := New[testRule]()
	_ = reg.Register("sort", testRule{Name: "sort", Priority: 3})

	t.Run("get_existing_item", func(t *testing.T) {
		got, err := reg.Get("sort")

		if err != nil {
			t.Fatalf("Get() error = %v, want nil", err)
		}

		if got.Name != "sort" || got.Priority != 3 {
			t.Errorf("Get() = %+v", got)
		}
	})

	t.Run("get_missing_item", func(t *testing.T) {
		_, err := reg.Get("nonexistent")

		if !errors.IsErrorCode(err, errors.ErrNotFound) {
			t.Errorf("Get() missing should return ErrNotFound, got %v", err)
		}
	})
}

func TestList_RegistrationOrder(t *testing.T) {
	reg := New[testRule]()

	// declaration order, not alphabetical
	names := []string{"charlie", "alpha", "bravo"}
	for i, name := range names {
		_ = reg.Register(name, testRule{Name: name, Priority: i})
	}

	list := reg.List()
	if len(list) != len(names) {
		t.Fatalf("List() returned %d items, want %d", len(list), len(names))
	}
	for i, name := range list {
		if name != names[i] {
			t.Errorf("List()[%d] = %s, want %s", i, name, names[i])
		}
	}

	values := reg.Values()
	for i, v := range values {
		if v.Name != names[i] {
			t.Errorf("Values()[%d] = %s, want %s", i, v.Name, names[i])
		}
	}
}

func TestHas(t *testing.T) {
	reg := New[testRule]()
	_ = reg.Register("align", testRule{})

	tests := []struct {
		name     string
		itemName string
		want     bool
	}{
		{"existing_item", "align", true},
		{"missing_item", "sort", false},
		{"empty_name", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := reg.Has(tt.itemName); got != tt.want {
				t.Errorf("Has(%s) = %v, want %v", tt.itemName, got, tt.want)
			}
		})
	}
}

func TestConcurrency(t *testing.T) {
	reg := New[testRule]()
	const goroutines = 10
	const itemsPerGoroutine = 100

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for g := 0; g < goroutines; g++ {
		go func(id int) {
			defer wg.Done()
			for i := 0; i < itemsPerGoroutine; i++ {
				name := fmt.Sprintf("g%d_rule%d", id, i)
				if err := reg.Register(name, testRule{Name: name}); err != nil {
					t.Errorf("Concurrent Register() failed: %v", err)
				}
			}
		}(g)
	}
	wg.Wait()

	if reg.Count() != goroutines*itemsPerGoroutine {
		t.Errorf("Count() after concurrent writes = %d, want %d", reg.Count(), goroutines*itemsPerGoroutine)
	}
	if len(reg.List()) != reg.Count() {
		t.Errorf("List() and Count() disagree: %d vs %d", len(reg.List()), reg.Count())
	}
}
