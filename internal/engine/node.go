package engine

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Kind tags the three shapes a decoded JSON value can take.
type Kind uint8

const (
	KindScalar Kind = iota
	KindObject
	KindArray
)

// Field is one key/value entry of an object node, kept in document order.
type Field struct {
	Key   string
	Value *Node
}

// Node is a decoded JSON value. Objects keep their keys in document order so
// that every walk over a page or response is reproducible.
// Scalars hold string, json.Number, bool or nil.
type Node struct {
	Kind   Kind
	Fields []Field
	Items  []*Node
	Value  any
}

// NewObject returns an empty object node.
func NewObject() *Node { return &Node{Kind: KindObject} }

// NewString returns a string scalar node.
func NewString(s string) *Node { return &Node{Kind: KindScalar, Value: s} }

// DecodeNode reads exactly one JSON value from r.
func DecodeNode(r io.Reader) (*Node, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	n, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	return n, nil
}

// ParseNode decodes a JSON document held in memory.
func ParseNode(data []byte) (*Node, error) {
	return DecodeNode(bytes.NewReader(data))
}

func decodeValue(dec *json.Decoder) (*Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			n := NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("object key: unexpected token %v", keyTok)
				}
				v, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				n.Fields = append(n.Fields, Field{Key: key, Value: v})
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return n, nil
		case '[':
			n := &Node{Kind: KindArray}
			for dec.More() {
				v, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				n.Items = append(n.Items, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return n, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %q", t)
	default:
		return &Node{Kind: KindScalar, Value: t}, nil
	}
}

// Get returns the value stored under key, or nil when n is not an object or
// has no such key.
func (n *Node) Get(key string) *Node {
	if n == nil || n.Kind != KindObject {
		return nil
	}
	for _, f := range n.Fields {
		if f.Key == key {
			return f.Value
		}
	}
	return nil
}

// Has reports whether the object n carries key.
func (n *Node) Has(key string) bool {
	return n.Get(key) != nil
}

// Path follows a chain of object keys.
func (n *Node) Path(keys ...string) *Node {
	cur := n
	for _, k := range keys {
		cur = cur.Get(k)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// Set replaces the value under key, appending the key when it is new.
func (n *Node) Set(key string, v *Node) {
	if n == nil || n.Kind != KindObject {
		return
	}
	for i := range n.Fields {
		if n.Fields[i].Key == key {
			n.Fields[i].Value = v
			return
		}
	}
	n.Fields = append(n.Fields, Field{Key: key, Value: v})
}

// List returns the elements of an array node.
func (n *Node) List() []*Node {
	if n == nil || n.Kind != KindArray {
		return nil
	}
	return n.Items
}

// Text renders a scalar as a string. Objects, arrays and null give "".
func (n *Node) Text() string {
	if n == nil || n.Kind != KindScalar {
		return ""
	}
	switch v := n.Value.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		if v {
			return "true"
		}
		return "false"
	}
	return ""
}

// Empty reports whether n carries no data: nil, null, "", false, 0, {} or [].
func (n *Node) Empty() bool {
	if n == nil {
		return true
	}
	switch n.Kind {
	case KindObject:
		return len(n.Fields) == 0
	case KindArray:
		return len(n.Items) == 0
	}
	switch v := n.Value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case bool:
		return !v
	case json.Number:
		f, err := v.Float64()
		return err == nil && f == 0
	}
	return false
}

// MarshalJSON encodes n preserving object key order.
func (n *Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := n.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (n *Node) encode(buf *bytes.Buffer) error {
	if n == nil {
		buf.WriteString("null")
		return nil
	}
	switch n.Kind {
	case KindObject:
		buf.WriteByte('{')
		for i, f := range n.Fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(f.Key)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := f.Value.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case KindArray:
		buf.WriteByte('[')
		for i, it := range n.Items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := it.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		b, err := json.Marshal(n.Value)
		if err != nil {
			return err
		}
		buf.Write(b)
	}
	return nil
}

// errNoObject is returned by ExtractObject when no balanced object follows.
var errNoObject = errors.New("no balanced JSON object")

// ExtractObject returns the first balanced {...} object at the start of s,
// skipping leading whitespace. Braces inside string literals are ignored.
func ExtractObject(s string) (string, error) {
	s = strings.TrimLeft(s, " \t\r\n")
	if s == "" || s[0] != '{' {
		return "", errNoObject
	}
	depth := 0
	inStr := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[:i+1], nil
			}
		}
	}
	return "", errNoObject
}
