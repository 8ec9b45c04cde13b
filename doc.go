// Package bencode decodes the bencode serialization format: length-prefixed
// byte strings, integers, lists and dictionaries, as used by the BitTorrent
// protocol family.
//
// [Decode] parses a buffer holding a top-level bencode dictionary into an
// immutable [Document]; [DecodeValue] parses a single value of any kind and
// returns the unconsumed remainder. Decoded values form a tree of [Value]
// nodes ([String], [Integer], [List] and [Dict]) that never alias each other
// and never re-interpret payload bytes as text.
//
// Every [Value] also implements [Source], the package's abstract view of
// serialized data. The [Decoder] type and the [Unmarshal] function walk a
// target Go type (structs, slices, maps, strings, etc.) and pull data out of
// a [Source] using functions like [Source.Int] and [Source.String], similar
// to [encoding/json.Unmarshal].
package bencode
