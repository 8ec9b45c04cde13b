package bencode

import "iter"

// Source represents the abstract interface to a serialized data source,
// designed to work seamlessly with the [Unmarshal] function. Every decoded
// [Value] implements Source, but the interface is open: custom
// implementations can feed [Unmarshal] from other representations, for
// example a faker that generates values on demand.
//
// A Source provides methods to interpret the underlying data in different
// forms:
//   - **Primitive types**: conversion to `bool`, `int64`, `uint64`,
//     `float64` and `string`.
//   - **Objects**: access to nested data via [Source.Get], which retrieves
//     the value associated with a key.
//   - **Slices**: sequential access to list-like data via [Source.Iter].
//   - **Maps**: traversal of key-value pairs via [Source.KeyValues].
//
// If converting the Source into a particular type isn't possible, the method
// must return [ErrNotSupported] as the error. This signals that the
// requested interpretation is not valid for the underlying data.
//
// Embed [EmptySource] to get a baseline implementation that rejects every
// conversion, then override the methods your representation supports.
type Source interface {
	// Bool returns the current value as a bool.
	// Returns error ErrNotSupported if the value can not be represented as such.
	Bool() (bool, error)

	// Int returns the current value as an int64.
	// Returns error ErrNotSupported if the value can not be represented as such.
	Int() (int64, error)

	// Uint returns the current value as an uint64.
	// Returns error ErrNotSupported if the value can not be represented as such.
	Uint() (uint64, error)

	// Float returns the current value as a float64.
	// Returns error ErrNotSupported if the value can not be represented as such.
	Float() (float64, error)

	// String returns the current value as a string.
	// Returns error ErrNotSupported if the value can not be represented as such.
	String() (string, error)

	// Get returns a child value of this [Source] if it exists.
	// Returns error [ErrNotSupported] if the current [Source] does not have
	// any child values. If the [Source] does have children, but just not the
	// requested child, [ErrNoValue] must be returned.
	Get(key string) (Source, error)

	// KeyValues interprets the [Source] as a map and iterates over the
	// elements within. It yields a pair of key and value [Source] instances.
	// Returns [ErrNotSupported] if the [Source] is not iterable.
	KeyValues() (iter.Seq2[Source, Source], error)

	// Iter interprets the [Source] as a slice and iterates over the
	// elements within.
	// Returns [ErrNotSupported] if the [Source] is not iterable.
	Iter() (iter.Seq[Source], error)
}

// EmptySource is a Source that returns ErrNotSupported for all conversion
// functions. It is useful as an embedded base for your own custom Source
// implementation.
type EmptySource struct{}

var _ Source = EmptySource{}

func (e EmptySource) Bool() (bool, error) {
	return false, ErrNotSupported
}

func (e EmptySource) Int() (int64, error) {
	return 0, ErrNotSupported
}

func (e EmptySource) Uint() (uint64, error) {
	return 0, ErrNotSupported
}

func (e EmptySource) Float() (float64, error) {
	return 0, ErrNotSupported
}

func (e EmptySource) String() (string, error) {
	return "", ErrNotSupported
}

func (e EmptySource) Get(key string) (Source, error) {
	return nil, ErrNotSupported
}

func (e EmptySource) KeyValues() (iter.Seq2[Source, Source], error) {
	return nil, ErrNotSupported
}

func (e EmptySource) Iter() (iter.Seq[Source], error) {
	return nil, ErrNotSupported
}
