package bencode

import (
	"encoding"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"sync"

	"golang.org/x/exp/constraints"
)

var ErrNoValue = errors.New("no value")
var ErrNotSupported = errors.New("not supported")

type NotSupportedError struct {
	Type reflect.Type
}

func (n NotSupportedError) Error() string {
	return fmt.Sprintf("type %q is not supported", n.Type)
}

// Unmarshal decodes data as a bencode dictionary and stores the result in
// the value pointed to by target, mapping dictionary keys to struct fields
// via the `bencode` struct tag.
//
// Byte strings map to Go strings, []byte and fixed-size byte arrays;
// integers map to the integer kinds (range-checked), floats and, for 0 and
// 1, bools; lists map to slices and arrays; dictionaries map to structs and
// maps. A field of type [Value] captures the decoded subtree as is.
func Unmarshal(data []byte, target any) error {
	doc, err := Decode(data)
	if err != nil {
		return err
	}

	return dec.Unmarshal(doc.Root(), target)
}

// UnmarshalNew works like [Unmarshal] but allocates the target itself.
func UnmarshalNew[T any](data []byte) (T, error) {
	var target T
	err := Unmarshal(data, &target)
	return target, err
}

// UnmarshalSource maps an already decoded [Source] onto target using the
// default [Decoder].
func UnmarshalSource(source Source, target any) error {
	return dec.Unmarshal(source, target)
}

// A setter sets the reflect.Value to a value extracted from the given Source
type setter func(Source, reflect.Value) error

// A set of types that are currently in construction
type typeSet map[reflect.Type]struct{}

var tyTextUnmarshaler = reflect.TypeFor[encoding.TextUnmarshaler]()
var tyValue = reflect.TypeFor[Value]()

// The default Decoder instance.
var dec Decoder

// Decoder can be used to customize unmarshalling. This type is typesafe.
type Decoder struct {
	// the struct tag that is used
	structTag string

	// Cache for setters, indexed by reflect.Type
	setterCache sync.Map

	// Require values for fields. Set to true to fail with ErrNoValue
	// if a value is missing for a struct field
	requireValues bool
}

func NewDecoder() *Decoder {
	return &Decoder{
		structTag: "bencode",
	}
}

// WithTag returns a Decoder that reads field names from the given struct
// tag instead of `bencode`.
func (d *Decoder) WithTag(structTag string) *Decoder {
	if d.structTag == structTag {
		return d
	}

	return &Decoder{
		structTag:     structTag,
		requireValues: d.requireValues,
	}
}

// RequireValues returns a Decoder that fails with [ErrNoValue] if the
// source has no value for some struct field.
func (d *Decoder) RequireValues() *Decoder {
	if d.requireValues {
		return d
	}

	return &Decoder{
		structTag:     d.structTag,
		requireValues: true,
	}
}

func (d *Decoder) Unmarshal(source Source, target any) error {
	targetPointer := reflect.ValueOf(target)
	if targetPointer.Kind() != reflect.Pointer || targetPointer.IsNil() {
		return fmt.Errorf("target must be a non-nil pointer, got %T", target)
	}

	targetValue := targetPointer.Elem()

	// build the setter for the targets type
	setter, err := d.setterOf(typeSet{}, targetValue.Type())
	if err != nil {
		return err
	}

	return setter(source, targetValue)
}

func (d *Decoder) setterOf(inConstruction typeSet, ty reflect.Type) (setter, error) {
	if cached, ok := d.setterCache.Load(ty); ok {
		return cached.(setter), nil
	}

	if _, ok := inConstruction[ty]; ok {
		// detected a cycle. return a setter that does a cache lookup when executed.
		// we assume that the actual setter will be in the cache once this setter is executed.
		lazySetter := func(source Source, target reflect.Value) error {
			cached, _ := d.setterCache.Load(ty)
			return cached.(setter)(source, target)
		}

		return lazySetter, nil
	}

	inConstruction[ty] = struct{}{}

	setter, err := d.makeSetterOf(inConstruction, ty)
	if err != nil {
		return nil, err
	}

	d.setterCache.Store(ty, setter)

	return setter, nil
}

func (d *Decoder) makeSetterOf(inConstruction typeSet, ty reflect.Type) (setter, error) {
	if ty == tyValue {
		return setValue, nil
	}

	if reflect.PointerTo(ty).Implements(tyTextUnmarshaler) {
		return setTextUnmarshaler, nil
	}

	switch ty.Kind() {
	case reflect.Bool:
		return setBool, nil

	case reflect.Int:
		return makeSetSigned[int](math.MinInt, math.MaxInt), nil

	case reflect.Int8:
		return makeSetSigned[int8](math.MinInt8, math.MaxInt8), nil

	case reflect.Int16:
		return makeSetSigned[int16](math.MinInt16, math.MaxInt16), nil

	case reflect.Int32:
		return makeSetSigned[int32](math.MinInt32, math.MaxInt32), nil

	case reflect.Int64:
		return makeSetSigned[int64](math.MinInt64, math.MaxInt64), nil

	case reflect.Uint:
		return makeSetUnsigned[uint](math.MaxUint), nil

	case reflect.Uint8:
		return makeSetUnsigned[uint8](math.MaxUint8), nil

	case reflect.Uint16:
		return makeSetUnsigned[uint16](math.MaxUint16), nil

	case reflect.Uint32:
		return makeSetUnsigned[uint32](math.MaxUint32), nil

	case reflect.Uint64:
		return makeSetUnsigned[uint64](math.MaxUint64), nil

	case reflect.Float32, reflect.Float64:
		return setFloat, nil

	case reflect.String:
		return setString, nil

	case reflect.Pointer:
		return d.makeSetPointer(inConstruction, ty)

	case reflect.Struct:
		return d.makeSetStruct(inConstruction, ty)

	case reflect.Slice:
		if ty.Elem().Kind() == reflect.Uint8 {
			return setBytes, nil
		}

		return d.makeSetSlice(inConstruction, ty)

	case reflect.Array:
		if ty.Elem().Kind() == reflect.Uint8 {
			return makeSetByteArray(ty), nil
		}

		return d.makeSetArray(inConstruction, ty)

	case reflect.Map:
		return d.makeSetMap(inConstruction, ty)

	default:
		return nil, NotSupportedError{Type: ty}
	}
}

func (d *Decoder) makeSetStruct(inConstruction typeSet, ty reflect.Type) (setter, error) {
	var setters []setter

	structTag := d.structTag
	if structTag == "" {
		structTag = "bencode"
	}

	fields := fieldsToSerialize(ty, structTag)

	for _, field := range fields {
		de, err := d.setterOf(inConstruction, field.Type)
		if err != nil {
			return nil, fmt.Errorf("setter for field %q: %w", field.Name, err)
		}

		setters = append(setters, de)
	}

	setter := func(source Source, target reflect.Value) error {
		for idx, field := range fields {
			fieldSource, err := source.Get(field.Name)
			switch {
			case errors.Is(err, ErrNoValue):
				if d.requireValues {
					return fmt.Errorf("field %q: %w", field.Name, err)
				}
				// It is okay to not get a value at all,
				// in that case we just skip the field
				continue
			case err != nil:
				return fmt.Errorf("lookup child %q: %w", field.Name, err)
			}

			fieldValue := target.FieldByIndex(field.Index)
			if err := setters[idx](fieldSource, fieldValue); err != nil {
				return fmt.Errorf("set field %q on %q: %w", field.Name, target.Type(), err)
			}
		}

		return nil
	}

	return setter, nil
}

func (d *Decoder) makeSetMap(inConstruction typeSet, ty reflect.Type) (setter, error) {
	keySetter, err := d.setterOf(inConstruction, ty.Key())
	if err != nil {
		return nil, fmt.Errorf("setter for key type %q: %w", ty, err)
	}

	valueSetter, err := d.setterOf(inConstruction, ty.Elem())
	if err != nil {
		return nil, fmt.Errorf("setter for value type %q: %w", ty, err)
	}

	keyType := ty.Key()
	valueType := ty.Elem()

	setter := func(source Source, target reflect.Value) error {
		keyValues, err := source.KeyValues()
		if err != nil {
			return fmt.Errorf("iterate key/value pairs: %w", err)
		}

		mapTarget := reflect.MakeMap(ty)

		for keySource, valueSource := range keyValues {
			keyTarget := reflect.New(keyType).Elem()
			if err := keySetter(keySource, keyTarget); err != nil {
				return fmt.Errorf("set key: %w", err)
			}

			valueTarget := reflect.New(valueType).Elem()
			if err := valueSetter(valueSource, valueTarget); err != nil {
				return fmt.Errorf("set value: %w", err)
			}

			mapTarget.SetMapIndex(keyTarget, valueTarget)
		}

		target.Set(mapTarget)

		return nil
	}

	return setter, nil
}

func (d *Decoder) makeSetSlice(inConstruction typeSet, ty reflect.Type) (setter, error) {
	elementSetter, err := d.setterOf(inConstruction, ty.Elem())
	if err != nil {
		return nil, fmt.Errorf("setter for element type %q: %w", ty, err)
	}

	// a empty element
	placeholderValue := reflect.New(ty.Elem()).Elem()

	setter := func(source Source, target reflect.Value) error {
		sourceIter, err := source.Iter()
		if err != nil {
			return fmt.Errorf("as iter: %w", err)
		}

		for elementSource := range sourceIter {
			// add an empty element to grow the list
			target.Set(reflect.Append(target, placeholderValue))

			idx := target.Len() - 1
			elementValue := target.Index(idx)
			if err := elementSetter(elementSource, elementValue); err != nil {
				return fmt.Errorf("set element idx=%d: %w", idx, err)
			}
		}

		return nil
	}

	return setter, nil
}

func (d *Decoder) makeSetArray(inConstruction typeSet, ty reflect.Type) (setter, error) {
	elementSetter, err := d.setterOf(inConstruction, ty.Elem())
	if err != nil {
		return nil, fmt.Errorf("setter for element type %q: %w", ty, err)
	}

	// number of elements in the array
	elementCount := ty.Len()

	setter := func(source Source, target reflect.Value) error {
		sourceIter, err := source.Iter()
		if err != nil {
			return fmt.Errorf("as iter: %w", err)
		}

		idx := 0
		for elementSource := range sourceIter {
			if idx == elementCount {
				break
			}

			elementValue := target.Index(idx)
			if err := elementSetter(elementSource, elementValue); err != nil {
				return fmt.Errorf("set element idx=%d: %w", idx, err)
			}

			idx++
		}

		return nil
	}

	return setter, nil
}

func (d *Decoder) makeSetPointer(inConstruction typeSet, ty reflect.Type) (setter, error) {
	pointeeType := ty.Elem()

	pointeeSetter, err := d.setterOf(inConstruction, pointeeType)
	if err != nil {
		return nil, err
	}

	setter := func(source Source, target reflect.Value) error {
		// newValue is now a pointer to an instance of the pointeeType
		newValue := reflect.New(pointeeType)
		if err := pointeeSetter(source, newValue.Elem()); err != nil {
			return err
		}

		// set pointer to the new value
		target.Set(newValue)

		return nil
	}

	return setter, err
}

func setValue(source Source, target reflect.Value) error {
	value, ok := source.(Value)
	if !ok {
		return fmt.Errorf("source %T is not a decoded value: %w", source, ErrNotSupported)
	}

	target.Set(reflect.ValueOf(value))
	return nil
}

func setBool(source Source, target reflect.Value) error {
	boolValue, err := source.Bool()
	if err != nil {
		return fmt.Errorf("get bool value: %w", err)
	}

	target.SetBool(boolValue)
	return nil
}

func makeSetSigned[T constraints.Signed](minValue, maxValue int64) setter {
	return func(source Source, target reflect.Value) error {
		intValue, err := source.Int()
		if err != nil {
			return fmt.Errorf("get int value: %w", err)
		}

		if intValue < minValue || intValue > maxValue {
			var tZero T
			return fmt.Errorf("invalid %T value %d: %w", tZero, intValue, strconv.ErrRange)
		}

		target.SetInt(intValue)
		return nil
	}
}

func makeSetUnsigned[T constraints.Unsigned](maxValue uint64) setter {
	return func(source Source, target reflect.Value) error {
		uintValue, err := source.Uint()
		if err != nil {
			return fmt.Errorf("get uint value: %w", err)
		}

		if uintValue > maxValue {
			var tZero T
			return fmt.Errorf("invalid %T value %d: %w", tZero, uintValue, strconv.ErrRange)
		}

		target.SetUint(uintValue)
		return nil
	}
}

func setFloat(source Source, target reflect.Value) error {
	floatValue, err := source.Float()
	if err != nil {
		return fmt.Errorf("get float value: %w", err)
	}

	target.SetFloat(floatValue)
	return nil
}

func setString(source Source, target reflect.Value) error {
	stringValue, err := source.String()
	if err != nil {
		return fmt.Errorf("get string value: %w", err)
	}

	target.SetString(stringValue)

	return nil
}

func setBytes(source Source, target reflect.Value) error {
	stringValue, err := source.String()
	if err != nil {
		return fmt.Errorf("get string value: %w", err)
	}

	// the conversion copies, the target never aliases the input buffer
	target.SetBytes([]byte(stringValue))

	return nil
}

func makeSetByteArray(ty reflect.Type) setter {
	elementCount := ty.Len()

	return func(source Source, target reflect.Value) error {
		stringValue, err := source.String()
		if err != nil {
			return fmt.Errorf("get string value: %w", err)
		}

		if len(stringValue) != elementCount {
			return fmt.Errorf("string of length %d does not fit %q: %w", len(stringValue), ty, strconv.ErrRange)
		}

		reflect.Copy(target, reflect.ValueOf([]byte(stringValue)))
		return nil
	}
}

func setTextUnmarshaler(source Source, target reflect.Value) error {
	text, err := source.String()
	if err != nil {
		return fmt.Errorf("get string value: %w", err)
	}

	m := target.Addr().Interface().(encoding.TextUnmarshaler)
	return m.UnmarshalText([]byte(text))
}
