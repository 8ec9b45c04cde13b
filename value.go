package bencode

import (
	"iter"

	"github.com/elliotchance/orderedmap/v3"
)

// Value is one decoded bencode node. The concrete types are [String],
// [Integer], [List] and [Dict]; no other implementations exist. A Value is
// built once during decoding and never mutated afterwards, so it is safe to
// share across goroutines for read-only access.
//
// Every Value implements [Source] and can be handed to [Unmarshal] directly.
type Value interface {
	Source

	// sealed: only this package's types can be a Value.
	value()
}

var (
	_ Value = String(nil)
	_ Value = Integer(0)
	_ Value = List(nil)
	_ Value = Dict{}
)

// String is a bencode byte string. The payload is opaque: it is kept exactly
// as it appeared on the wire with no text decoding applied, so it may hold
// arbitrary binary data.
type String []byte

func (s String) value() {}

func (s String) Bool() (bool, error) {
	return false, ErrNotSupported
}

func (s String) Int() (int64, error) {
	return 0, ErrNotSupported
}

func (s String) Uint() (uint64, error) {
	return 0, ErrNotSupported
}

func (s String) Float() (float64, error) {
	return 0, ErrNotSupported
}

func (s String) String() (string, error) {
	return string(s), nil
}

func (s String) Get(key string) (Source, error) {
	return nil, ErrNotSupported
}

func (s String) KeyValues() (iter.Seq2[Source, Source], error) {
	return nil, ErrNotSupported
}

func (s String) Iter() (iter.Seq[Source], error) {
	return nil, ErrNotSupported
}

// Integer is a bencode integer. The wire format carries signed values of
// arbitrary width; this package supports the int64 range.
type Integer int64

func (i Integer) value() {}

// Bool maps the integers 0 and 1 to false and true. Any other value is not
// a bool; bencode itself has no boolean kind.
func (i Integer) Bool() (bool, error) {
	switch i {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, ErrNotSupported
	}
}

func (i Integer) Int() (int64, error) {
	return int64(i), nil
}

func (i Integer) Uint() (uint64, error) {
	if i < 0 {
		return 0, ErrNotSupported
	}

	return uint64(i), nil
}

func (i Integer) Float() (float64, error) {
	return float64(i), nil
}

func (i Integer) String() (string, error) {
	return "", ErrNotSupported
}

func (i Integer) Get(key string) (Source, error) {
	return nil, ErrNotSupported
}

func (i Integer) KeyValues() (iter.Seq2[Source, Source], error) {
	return nil, ErrNotSupported
}

func (i Integer) Iter() (iter.Seq[Source], error) {
	return nil, ErrNotSupported
}

// List is a bencode list. Element order is the wire order.
type List []Value

func (l List) value() {}

func (l List) Bool() (bool, error) {
	return false, ErrNotSupported
}

func (l List) Int() (int64, error) {
	return 0, ErrNotSupported
}

func (l List) Uint() (uint64, error) {
	return 0, ErrNotSupported
}

func (l List) Float() (float64, error) {
	return 0, ErrNotSupported
}

func (l List) String() (string, error) {
	return "", ErrNotSupported
}

func (l List) Get(key string) (Source, error) {
	return nil, ErrNotSupported
}

func (l List) KeyValues() (iter.Seq2[Source, Source], error) {
	return nil, ErrNotSupported
}

func (l List) Iter() (iter.Seq[Source], error) {
	it := func(yield func(Source) bool) {
		for _, element := range l {
			if !yield(element) {
				break
			}
		}
	}

	return it, nil
}

// Dict is a bencode dictionary. Keys are raw byte strings (held as Go
// strings, which may contain arbitrary bytes); two keys are equal iff their
// byte sequences are identical. Insertion order is preserved so that the
// wire order of an encoded dictionary survives decoding.
//
// Decoding does not require keys to arrive in the lexicographic order the
// canonical format prescribes. When the same key appears more than once the
// last value wins, while the key keeps the position of its first occurrence.
type Dict struct {
	EmptySource

	entries *orderedmap.OrderedMap[string, Value]
}

func newDict() Dict {
	return Dict{entries: orderedmap.NewOrderedMap[string, Value]()}
}

func (d Dict) value() {}

func (d Dict) set(key string, value Value) {
	d.entries.Set(key, value)
}

// Len returns the number of entries.
func (d Dict) Len() int {
	if d.entries == nil {
		return 0
	}

	return d.entries.Len()
}

// Lookup returns the value stored under key, or false if the key is absent.
func (d Dict) Lookup(key string) (Value, bool) {
	if d.entries == nil {
		return nil, false
	}

	return d.entries.Get(key)
}

// Get implements [Source]. It returns [ErrNoValue] if the key is absent.
func (d Dict) Get(key string) (Source, error) {
	value, ok := d.Lookup(key)
	if !ok {
		return nil, ErrNoValue
	}

	return value, nil
}

// KeyValues implements [Source]. Keys are yielded as [String] values.
func (d Dict) KeyValues() (iter.Seq2[Source, Source], error) {
	it := func(yield func(Source, Source) bool) {
		if d.entries == nil {
			return
		}

		for key, value := range d.entries.AllFromFront() {
			if !yield(String(key), value) {
				break
			}
		}
	}

	return it, nil
}

// All iterates over the entries in insertion order.
func (d Dict) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		if d.entries == nil {
			return
		}

		for key, value := range d.entries.AllFromFront() {
			if !yield(key, value) {
				break
			}
		}
	}
}

// Keys iterates over the keys in insertion order.
func (d Dict) Keys() iter.Seq[string] {
	return func(yield func(string) bool) {
		for key := range d.All() {
			if !yield(key) {
				break
			}
		}
	}
}
