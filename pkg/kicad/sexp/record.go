// Package sexp implements the parenthesized record-tree format used by
// KiCad netlist files. A document is an ordered multimap: keys may repeat
// (multiple "comment" entries, many "comp" entries), order is significant,
// and whitespace is not. The package provides serialization with canonical
// pruning and a position-tracking parser, with the guarantee that
// Gen(Parse(Gen(x))) equals Gen(x).
package sexp

// Node is one value in a record tree.
type Node interface {
	node()
}

// Str is a scalar rendered as its string form, quoted when needed.
type Str string

// Int is an integer scalar.
type Int int

// Seq concatenates sibling nodes at one level without an enclosing pair.
// Used for mixed content such as (field (name X) value).
type Seq []Node

// Record is an ordered, key-repeatable multimap. Each pair renders as
// "(key value…)"; sibling pairs are space-joined without extra parentheses.
type Record struct {
	Pairs []Pair
}

// Pair is one keyed entry of a record. A nil Value renders as a bare (key).
type Pair struct {
	Key   string
	Value Node
}

func (Str) node()     {}
func (Int) node()     {}
func (Seq) node()     {}
func (*Record) node() {}

// NewRecord creates an empty record.
func NewRecord() *Record {
	return &Record{}
}

// Add appends a key/value pair and returns the record for chaining.
func (r *Record) Add(key string, v Node) *Record {
	r.Pairs = append(r.Pairs, Pair{Key: key, Value: v})
	return r
}

// Find returns the value of the first pair with the given key.
func (r *Record) Find(key string) (Node, bool) {
	for _, p := range r.Pairs {
		if p.Key == key {
			return p.Value, true
		}
	}
	return nil, false
}

// FindAll returns the values of every pair with the given key, in order.
func (r *Record) FindAll(key string) []Node {
	var out []Node
	for _, p := range r.Pairs {
		if p.Key == key {
			out = append(out, p.Value)
		}
	}
	return out
}

// FindRecord returns the first value for key when it is itself a record.
func (r *Record) FindRecord(key string) (*Record, bool) {
	v, ok := r.Find(key)
	if !ok {
		return nil, false
	}
	rec, ok := v.(*Record)
	return rec, ok
}

// Scalar returns the string form of a scalar node. Parsed documents carry
// all scalars as Str.
func Scalar(n Node) (string, bool) {
	switch v := n.(type) {
	case Str:
		return string(v), true
	case Int:
		return itoa(int(v)), true
	default:
		return "", false
	}
}
