package engine

import "testing"

func TestDequeOrder(t *testing.T) {
	d := NewDeque("seed")
	d.PushBack("reply-1")
	d.PushFront("page-1a", "page-1b")
	d.PushBack("reply-2")
	d.PushFront("page-2")

	want := []string{"page-2", "page-1a", "page-1b", "seed", "reply-1", "reply-2"}
	for i, w := range want {
		got, ok := d.PopFront()
		if !ok {
			t.Fatalf("PopFront() #%d: deque empty", i)
		}
		if got != w {
			t.Errorf("PopFront() #%d = %q, want %q", i, got, w)
		}
	}
	if _, ok := d.PopFront(); ok {
		t.Error("PopFront() on empty deque returned ok")
	}
	if d.Len() != 0 {
		t.Errorf("Len() = %d, want 0", d.Len())
	}
}

func TestDequePushFrontEmpty(t *testing.T) {
	d := NewDeque[int]()
	d.PushFront()
	if d.Len() != 0 {
		t.Errorf("Len() = %d, want 0", d.Len())
	}
}
