package bencode

import (
	"errors"
	"fmt"
	"strconv"
)

var ErrTruncated = errors.New("truncated input")
var ErrInvalidLengthPrefix = errors.New("invalid length prefix")
var ErrInvalidInteger = errors.New("invalid integer")
var ErrUnexpectedTag = errors.New("unexpected tag byte")
var ErrLengthOutOfBounds = errors.New("length exceeds remaining input")

// SyntaxError reports malformed input. It wraps one of the sentinel errors
// above (use [errors.Is] to classify) and records the byte offset at which
// decoding failed.
type SyntaxError struct {
	Offset int
	Err    error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("bencode: %v at offset %d", e.Err, e.Offset)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// Decode parses data as a single bencode dictionary and returns it as a
// [Document]. The input is not modified and may be shared: decoded byte
// strings are views into data.
//
// Any bytes following the first complete dictionary are ignored. Callers
// that require the dictionary to span the whole buffer can compare
// [Document.Bytes] against their input.
func Decode(data []byte) (*Document, error) {
	p := &parser{data: data}

	if p.pos >= len(p.data) {
		return nil, p.errorAt(p.pos, ErrTruncated)
	}

	if p.data[p.pos] != 'd' {
		return nil, p.errorAt(p.pos, fmt.Errorf("%w: %q does not start a dictionary", ErrUnexpectedTag, p.data[p.pos]))
	}

	root, err := p.parseDict()
	if err != nil {
		return nil, err
	}

	return &Document{root: root, raw: data[:p.pos]}, nil
}

// DecodeValue parses a single bencode value of any kind from the start of
// data. It returns the value and the unconsumed remainder of the buffer.
func DecodeValue(data []byte) (Value, []byte, error) {
	p := &parser{data: data}

	value, err := p.parseValue()
	if err != nil {
		return nil, nil, err
	}

	return value, data[p.pos:], nil
}

// parser is a cursor over an immutable buffer. Every parse method consumes
// at least one byte or fails, so decoding always terminates.
type parser struct {
	data []byte
	pos  int
}

func (p *parser) errorAt(offset int, err error) error {
	return &SyntaxError{Offset: offset, Err: err}
}

// parseValue dispatches on the next byte: 'i' starts an integer, 'l' a
// list, 'd' a dictionary and a decimal digit a length-prefixed string.
func (p *parser) parseValue() (Value, error) {
	if p.pos >= len(p.data) {
		return nil, p.errorAt(p.pos, ErrTruncated)
	}

	switch b := p.data[p.pos]; {
	case b == 'i':
		return p.parseInteger()
	case b == 'l':
		return p.parseList()
	case b == 'd':
		return p.parseDict()
	case b >= '0' && b <= '9':
		return p.parseString()
	default:
		return nil, p.errorAt(p.pos, fmt.Errorf("%w: %q", ErrUnexpectedTag, b))
	}
}

// parseString parses `<decimal-length>:<raw-bytes>`. The payload is taken
// verbatim, without any text decoding.
func (p *parser) parseString() (String, error) {
	start := p.pos

	for {
		if p.pos >= len(p.data) {
			return nil, p.errorAt(start, fmt.Errorf("%w: missing ':' separator", ErrTruncated))
		}

		if p.data[p.pos] == ':' {
			break
		}

		if p.data[p.pos] < '0' || p.data[p.pos] > '9' {
			return nil, p.errorAt(p.pos, fmt.Errorf("%w: %q", ErrInvalidLengthPrefix, p.data[p.pos]))
		}

		p.pos++
	}

	digits := p.data[start:p.pos]
	if len(digits) == 0 {
		return nil, p.errorAt(start, fmt.Errorf("%w: empty length", ErrInvalidLengthPrefix))
	}

	length, err := strconv.ParseUint(string(digits), 10, 64)
	if err != nil {
		return nil, p.errorAt(start, fmt.Errorf("%w: %q: %w", ErrInvalidLengthPrefix, digits, err))
	}

	// consume the ':'
	p.pos++

	if length > uint64(len(p.data)-p.pos) {
		return nil, p.errorAt(start, fmt.Errorf("%w: need %d bytes, %d left", ErrLengthOutOfBounds, length, len(p.data)-p.pos))
	}

	value := String(p.data[p.pos : p.pos+int(length)])
	p.pos += int(length)

	return value, nil
}

// parseInteger parses `i<decimal-integer>e`.
func (p *parser) parseInteger() (Integer, error) {
	// consume the 'i'
	start := p.pos
	p.pos++

	digitsStart := p.pos
	for {
		if p.pos >= len(p.data) {
			return 0, p.errorAt(start, fmt.Errorf("%w: missing 'e' terminator", ErrTruncated))
		}

		if p.data[p.pos] == 'e' {
			break
		}

		p.pos++
	}

	digits := p.data[digitsStart:p.pos]

	// consume the 'e'
	p.pos++

	if err := checkIntegerDigits(digits); err != nil {
		return 0, p.errorAt(digitsStart, err)
	}

	value, err := strconv.ParseInt(string(digits), 10, 64)
	if err != nil {
		return 0, p.errorAt(digitsStart, fmt.Errorf("%w: %q: %w", ErrInvalidInteger, digits, err))
	}

	return Integer(value), nil
}

// checkIntegerDigits enforces the canonical integer grammar: an optional
// '-' followed by decimal digits, no redundant leading zero and no "-0".
func checkIntegerDigits(digits []byte) error {
	s := digits

	negative := false
	if len(s) > 0 && s[0] == '-' {
		negative = true
		s = s[1:]
	}

	if len(s) == 0 {
		return fmt.Errorf("%w: no digits", ErrInvalidInteger)
	}

	for _, b := range s {
		if b < '0' || b > '9' {
			return fmt.Errorf("%w: %q", ErrInvalidInteger, digits)
		}
	}

	if s[0] == '0' && (negative || len(s) > 1) {
		return fmt.Errorf("%w: %q", ErrInvalidInteger, digits)
	}

	return nil
}

// parseList parses `l<value>*e`.
func (p *parser) parseList() (List, error) {
	// consume the 'l'
	start := p.pos
	p.pos++

	list := List{}

	for {
		if p.pos >= len(p.data) {
			return nil, p.errorAt(start, fmt.Errorf("%w: missing 'e' terminator", ErrTruncated))
		}

		if p.data[p.pos] == 'e' {
			p.pos++
			return list, nil
		}

		element, err := p.parseValue()
		if err != nil {
			return nil, err
		}

		list = append(list, element)
	}
}

// parseDict parses `d(<string><value>)*e`. Keys may arrive in any order;
// a repeated key overwrites the previous value (see [Dict]).
func (p *parser) parseDict() (Dict, error) {
	// consume the 'd'
	start := p.pos
	p.pos++

	dict := newDict()

	for {
		if p.pos >= len(p.data) {
			return Dict{}, p.errorAt(start, fmt.Errorf("%w: missing 'e' terminator", ErrTruncated))
		}

		if p.data[p.pos] == 'e' {
			p.pos++
			return dict, nil
		}

		key, err := p.parseString()
		if err != nil {
			return Dict{}, err
		}

		value, err := p.parseValue()
		if err != nil {
			return Dict{}, err
		}

		dict.set(string(key), value)
	}
}
