package engine

// Deque is a double-ended work list. PopFront takes the next item.
type Deque[T any] struct {
	items []T
}

// NewDeque returns a deque seeded with items, first item at the front.
func NewDeque[T any](items ...T) *Deque[T] {
	d := &Deque[T]{}
	d.items = append(d.items, items...)
	return d
}

// PushFront inserts items at the front, keeping their relative order.
func (d *Deque[T]) PushFront(items ...T) {
	if len(items) == 0 {
		return
	}
	merged := make([]T, 0, len(items)+len(d.items))
	merged = append(merged, items...)
	d.items = append(merged, d.items...)
}

// PushBack appends items at the back.
func (d *Deque[T]) PushBack(items ...T) {
	d.items = append(d.items, items...)
}

// PopFront removes and returns the front item.
func (d *Deque[T]) PopFront() (T, bool) {
	var zero T
	if len(d.items) == 0 {
		return zero, false
	}
	v := d.items[0]
	d.items[0] = zero
	d.items = d.items[1:]
	return v, true
}

// Len returns the number of queued items.
func (d *Deque[T]) Len() int { return len(d.items) }
