package bencode

// Document is the result of decoding a top-level bencode dictionary with
// [Decode]. It is immutable after construction and safe for concurrent
// read-only use.
type Document struct {
	root Dict
	raw  []byte
}

// Root returns the top-level dictionary.
func (d *Document) Root() Dict {
	return d.root
}

// Get looks up key in the top-level dictionary. It does not search nested
// dictionaries. The second return value reports whether the key was present.
func (d *Document) Get(key string) (Value, bool) {
	return d.root.Lookup(key)
}

// Bytes returns the exact encoded span the document was decoded from,
// excluding any trailing bytes [Decode] ignored. This is the input to use
// when hashing the dictionary, e.g. for a BitTorrent info hash.
func (d *Document) Bytes() []byte {
	return d.raw
}

// Unmarshal maps the document onto target using the default [Decoder].
func (d *Document) Unmarshal(target any) error {
	return dec.Unmarshal(d.root, target)
}
