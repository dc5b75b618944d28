package memstore

import "testing"

func TestStore(t *testing.T) {
	s := New()
	_ = s.Set("a", "1")
	_ = s.Set("b", "2")

	if v, ok, _ := s.Get("a"); !ok || v != "1" {
		t.Errorf("Get(a) = %q, %v, want %q, true", v, ok, "1")
	}
	_ = s.Delete("a", "c")
	if _, ok, _ := s.Get("a"); ok {
		t.Errorf("Get(a) after Delete ok = true, want false")
	}
	if got := s.Len(); got != 1 {
		t.Errorf("Len() = %d, want 1", got)
	}
}
