package symbols

import (
	"sync"
	"testing"
)

func TestDemangle(t *testing.T) {
	tests := []struct {
		name      string
		mangled   string
		wantFull  string
		wantShort string
	}{
		{"plain C name", "main", "main", "main"},
		{"function with params", "_Z4workv", "work()", "work"},
		{"namespaced", "_ZN2ns4workEi", "ns::work(int)", "ns::work"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCache()
			if got := c.Demangle(tt.mangled); got != tt.wantFull {
				t.Errorf("Demangle(%q) = %q, want %q", tt.mangled, got, tt.wantFull)
			}
			if got := c.Short(tt.mangled); got != tt.wantShort {
				t.Errorf("Short(%q) = %q, want %q", tt.mangled, got, tt.wantShort)
			}
		})
	}
}

func TestCache_Concurrent(t *testing.T) {
	c := NewCache()
	var wg sync.WaitGroup
	got := make([]string, 8)
	for i := range got {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got[i] = c.Short("_ZN2ns4workEi")
		}()
	}
	wg.Wait()
	c.Demangle("main")

	for i, g := range got {
		if g != "ns::work" {
			t.Errorf("goroutine %d: Short = %q, want %q", i, g, "ns::work")
		}
	}
	if len(c.short) != 1 || len(c.full) != 1 {
		t.Errorf("cache holds %d short and %d full names, want 1 and 1", len(c.short), len(c.full))
	}
}
