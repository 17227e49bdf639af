package deque

import "testing"

func TestFIFOOrdering(t *testing.T) {
	d := New[int]()
	for i := 0; i < 5; i++ {
		d.PushFront(i)
	}
	for i := 0; i < 5; i++ {
		v, ok := d.PopBack()
		if !ok || v != i {
			t.Fatalf("PopBack() = %d, %v, want %d, true", v, ok, i)
		}
	}
	if d.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", d.Len())
	}
}

func TestPopOnEmptyReturnsFalse(t *testing.T) {
	d := New[int]()
	if _, ok := d.PopBack(); ok {
		t.Fatalf("PopBack() on empty deque returned ok=true")
	}
	if _, ok := d.PopFront(); ok {
		t.Fatalf("PopFront() on empty deque returned ok=true")
	}
}

func TestGrowsAndPreservesOrder(t *testing.T) {
	d := New[int]()
	const n = 100
	for i := 0; i < n; i++ {
		d.PushFront(i)
	}
	if d.Len() != n {
		t.Fatalf("Len() = %d, want %d", d.Len(), n)
	}
	for i := 0; i < n; i++ {
		v, ok := d.PopBack()
		if !ok || v != i {
			t.Fatalf("PopBack() = %d, %v, want %d, true", v, ok, i)
		}
	}
}

func TestBothEnds(t *testing.T) {
	d := New[string]()
	d.PushBack("b")
	d.PushFront("a")
	d.PushBack("c")
	// order from front to back: a, b, c
	v, _ := d.PopFront()
	if v != "a" {
		t.Fatalf("PopFront() = %q, want a", v)
	}
	v, _ = d.PopBack()
	if v != "c" {
		t.Fatalf("PopBack() = %q, want c", v)
	}
	v, _ = d.PopBack()
	if v != "b" {
		t.Fatalf("PopBack() = %q, want b", v)
	}
}
