package bencode

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStringConversions(t *testing.T) {
	s := String("hello")

	stringValue, err := s.String()
	require.NoError(t, err)
	require.Equal(t, "hello", stringValue)

	// byte strings are opaque, they are never re-parsed as numbers
	_, err = String("42").Int()
	require.ErrorIs(t, err, ErrNotSupported)

	_, err = String("42").Uint()
	require.ErrorIs(t, err, ErrNotSupported)

	_, err = String("1.5").Float()
	require.ErrorIs(t, err, ErrNotSupported)

	_, err = String("true").Bool()
	require.ErrorIs(t, err, ErrNotSupported)

	_, err = s.Get("key")
	require.ErrorIs(t, err, ErrNotSupported)

	_, err = s.Iter()
	require.ErrorIs(t, err, ErrNotSupported)

	_, err = s.KeyValues()
	require.ErrorIs(t, err, ErrNotSupported)
}

func TestStringKeepsArbitraryBytes(t *testing.T) {
	payload := []byte{0xAB, 0xA3, 0xDA, 0x89, 0xFC}

	stringValue, err := String(payload).String()
	require.NoError(t, err)
	require.Equal(t, string(payload), stringValue)
	require.Equal(t, payload, []byte(stringValue))
}

func TestIntegerConversions(t *testing.T) {
	intValue, err := Integer(42).Int()
	require.NoError(t, err)
	require.Equal(t, int64(42), intValue)

	uintValue, err := Integer(42).Uint()
	require.NoError(t, err)
	require.Equal(t, uint64(42), uintValue)

	_, err = Integer(-1).Uint()
	require.ErrorIs(t, err, ErrNotSupported)

	floatValue, err := Integer(-18).Float()
	require.NoError(t, err)
	require.Equal(t, float64(-18), floatValue)

	_, err = Integer(42).String()
	require.ErrorIs(t, err, ErrNotSupported)

	_, err = Integer(42).Iter()
	require.ErrorIs(t, err, ErrNotSupported)
}

func TestIntegerBool(t *testing.T) {
	boolValue, err := Integer(0).Bool()
	require.NoError(t, err)
	require.False(t, boolValue)

	boolValue, err = Integer(1).Bool()
	require.NoError(t, err)
	require.True(t, boolValue)

	_, err = Integer(2).Bool()
	require.ErrorIs(t, err, ErrNotSupported)

	_, err = Integer(-1).Bool()
	require.ErrorIs(t, err, ErrNotSupported)
}

func TestListIter(t *testing.T) {
	list := List{String("a"), Integer(1)}

	it, err := list.Iter()
	require.NoError(t, err)

	var elements []Source
	for element := range it {
		elements = append(elements, element)
	}

	require.Equal(t, []Source{String("a"), Integer(1)}, elements)

	_, err = list.Int()
	require.ErrorIs(t, err, ErrNotSupported)

	_, err = list.Get("key")
	require.ErrorIs(t, err, ErrNotSupported)
}

func TestDictLookup(t *testing.T) {
	doc, err := Decode([]byte("d1:a1:x1:bi2ee"))
	require.NoError(t, err)

	dict := doc.Root()
	require.Equal(t, 2, dict.Len())

	value, ok := dict.Lookup("a")
	require.True(t, ok)
	require.Equal(t, String("x"), value)

	_, ok = dict.Lookup("missing")
	require.False(t, ok)
}

func TestDictGet(t *testing.T) {
	doc, err := Decode([]byte("d1:a1:xe"))
	require.NoError(t, err)

	source, err := doc.Root().Get("a")
	require.NoError(t, err)
	require.Equal(t, String("x"), source)

	_, err = doc.Root().Get("missing")
	require.ErrorIs(t, err, ErrNoValue)
}

func TestDictKeyValuesInOrder(t *testing.T) {
	doc, err := Decode([]byte("d1:c1:x1:a1:y1:b1:ze"))
	require.NoError(t, err)

	it, err := doc.Root().KeyValues()
	require.NoError(t, err)

	var keys []Source
	var values []Source
	for key, value := range it {
		keys = append(keys, key)
		values = append(values, value)
	}

	require.Equal(t, []Source{String("c"), String("a"), String("b")}, keys)
	require.Equal(t, []Source{String("x"), String("y"), String("z")}, values)
}

func TestDictAll(t *testing.T) {
	doc, err := Decode([]byte("d1:bi1e1:ai2ee"))
	require.NoError(t, err)

	collected := map[string]Value{}
	for key, value := range doc.Root().All() {
		collected[key] = value
	}

	require.Equal(t, map[string]Value{"b": Integer(1), "a": Integer(2)}, collected)
	require.Equal(t, []string{"b", "a"}, slices.Collect(doc.Root().Keys()))
}

func TestDictRejectsPrimitiveConversions(t *testing.T) {
	doc, err := Decode([]byte("de"))
	require.NoError(t, err)

	dict := doc.Root()

	_, err = dict.Int()
	require.ErrorIs(t, err, ErrNotSupported)

	_, err = dict.String()
	require.ErrorIs(t, err, ErrNotSupported)

	_, err = dict.Iter()
	require.ErrorIs(t, err, ErrNotSupported)
}

func TestZeroDict(t *testing.T) {
	var dict Dict

	require.Equal(t, 0, dict.Len())

	_, ok := dict.Lookup("key")
	require.False(t, ok)

	_, err := dict.Get("key")
	require.ErrorIs(t, err, ErrNoValue)

	require.Empty(t, slices.Collect(dict.Keys()))
}

func TestEmptySource(t *testing.T) {
	source := EmptySource{}

	_, err := source.Bool()
	require.ErrorIs(t, err, ErrNotSupported)

	_, err = source.Int()
	require.ErrorIs(t, err, ErrNotSupported)

	_, err = source.Uint()
	require.ErrorIs(t, err, ErrNotSupported)

	_, err = source.Float()
	require.ErrorIs(t, err, ErrNotSupported)

	_, err = source.String()
	require.ErrorIs(t, err, ErrNotSupported)

	_, err = source.Get("key")
	require.ErrorIs(t, err, ErrNotSupported)

	_, err = source.KeyValues()
	require.ErrorIs(t, err, ErrNotSupported)

	_, err = source.Iter()
	require.ErrorIs(t, err, ErrNotSupported)
}
