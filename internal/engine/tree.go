package engine

import "iter"

// SearchKey yields every value stored under key anywhere in root.
//
// The walk uses an explicit stack: an object yields its matching entries in
// key order as it is visited and pushes every other entry's value; an array
// pushes all of its items. The most recently pushed node is visited next.
// Matches are not descended into and nothing is deduplicated.
func SearchKey(root *Node, key string) iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		if root == nil {
			return
		}
		stack := []*Node{root}
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			switch cur.Kind {
			case KindObject:
				for _, f := range cur.Fields {
					if f.Key == key {
						if !yield(f.Value) {
							return
						}
						continue
					}
					stack = append(stack, f.Value)
				}
			case KindArray:
				stack = append(stack, cur.Items...)
			}
		}
	}
}

// First returns the first value SearchKey finds for key, or nil.
func First(root *Node, key string) *Node {
	for v := range SearchKey(root, key) {
		return v
	}
	return nil
}

// SearchAll collects every SearchKey match into a slice.
func SearchAll(root *Node, key string) []*Node {
	var out []*Node
	for v := range SearchKey(root, key) {
		out = append(out, v)
	}
	return out
}
