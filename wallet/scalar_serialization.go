package wallet

import (
	"fmt"
	"reflect"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// ScalarSerialize is implemented by any wallet type with a fixed, known-length
// encoding as a sequence of scalars. Calldata codecs and circuit witness
// assembly both walk wallet state through this interface to reach the flat
// scalar vectors the on-chain verifier and proof system operate over.
type ScalarSerialize interface {
	// FromScalars deserializes a value from a slice of Scalars
	FromScalars(scalars *ScalarIterator) error
	// ToScalars serializes a value to a slice of Scalars
	ToScalars() ([]Scalar, error)
	// NumScalars returns the number of Scalars that will be serialized
	NumScalars() int
}

// FromScalars implements ScalarSerialize for Scalar itself: the base case of
// the recursive serialization.
func (s *Scalar) FromScalars(scalars *ScalarIterator) error {
	next, err := scalars.Next()
	if err != nil {
		return err
	}
	*s = next
	return nil
}

// ToScalars implements ScalarSerialize for Scalar itself.
func (s *Scalar) ToScalars() ([]Scalar, error) {
	return []Scalar{*s}, nil
}

// NumScalars implements ScalarSerialize for Scalar itself.
func (s *Scalar) NumScalars() int {
	return 1
}

// Uint64 is a small integer that serializes as a single scalar, used for
// wire-level counters and indices that need not carry full field width.
type Uint64 uint64

// FromScalars implements ScalarSerialize for Uint64.
func (s *Uint64) FromScalars(scalars *ScalarIterator) error {
	next, err := scalars.Next()
	if err != nil {
		return err
	}

	elt := fr.Element(next)
	*s = Uint64(elt.Uint64())
	return nil
}

// ToScalars implements ScalarSerialize for Uint64.
func (s *Uint64) ToScalars() ([]Scalar, error) {
	return []Scalar{Scalar(fr.NewElement(uint64(*s)))}, nil
}

// NumScalars implements ScalarSerialize for Uint64.
func (s *Uint64) NumScalars() int {
	return 1
}

// skipScalarSerialize is the struct tag that opts a field out of scalar
// serialization entirely (used for fields with no on-chain representation,
// such as an Order's UUID).
const skipScalarSerialize = "skip"

// isSkippedField reports whether a struct field is tagged to be excluded from
// scalar (de)serialization.
func isSkippedField(t reflect.StructField) bool {
	return t.Tag.Get("scalar_serialize") == skipScalarSerialize
}

// ToScalarsRecursive serializes s, a pointer to a struct, array, or
// ScalarSerialize-implementing value, into its flat scalar encoding.
func ToScalarsRecursive(s interface{}) ([]Scalar, error) {
	if ss, ok := s.(ScalarSerialize); ok {
		return ss.ToScalars()
	}

	v := reflect.ValueOf(s)
	if v.Kind() != reflect.Ptr {
		return nil, fmt.Errorf("ToScalarsRecursive: input must be a pointer, got %T", s)
	}

	elem := v.Elem()
	switch elem.Kind() {
	case reflect.Struct:
		return serializeFields(elem, structFields(elem))
	case reflect.Array:
		return serializeFields(elem, arrayFields(elem))
	case reflect.Pointer:
		return ToScalarsRecursive(elem.Interface())
	default:
		return nil, fmt.Errorf("ToScalarsRecursive: unsupported type %T", s)
	}
}

// structFields returns the addressable, non-skipped fields of a struct value,
// in declaration order.
func structFields(v reflect.Value) []reflect.Value {
	fields := make([]reflect.Value, 0, v.NumField())
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		if !field.CanInterface() || isSkippedField(v.Type().Field(i)) {
			continue
		}
		fields = append(fields, field)
	}
	return fields
}

// arrayFields returns the addressable elements of an array value, in index
// order.
func arrayFields(v reflect.Value) []reflect.Value {
	fields := make([]reflect.Value, v.Len())
	for i := range fields {
		fields[i] = v.Index(i)
	}
	return fields
}

// serializeFields concatenates the scalar encoding of each field in order.
func serializeFields(owner reflect.Value, fields []reflect.Value) ([]Scalar, error) {
	scalars := make([]Scalar, 0, len(fields))
	for i, field := range fields {
		if !field.CanAddr() {
			return nil, fmt.Errorf("serializeFields: field %d of %s is not addressable", i, owner.Type())
		}

		fieldScalars, err := ToScalarsRecursive(field.Addr().Interface())
		if err != nil {
			return nil, fmt.Errorf("serializing field %d of %s: %w", i, owner.Type(), err)
		}
		scalars = append(scalars, fieldScalars...)
	}
	return scalars, nil
}

// ScalarIterator walks a flat slice of scalars left to right, handing each one
// out once. Deserializers consume from a shared iterator so nested fields pull
// scalars from the correct position in the encoding without knowing their own
// offset.
type ScalarIterator struct {
	scalars []Scalar
	index   int
}

// NewScalarIterator wraps scalars in an iterator starting at the first element.
func NewScalarIterator(scalars []Scalar) *ScalarIterator {
	return &ScalarIterator{scalars: scalars}
}

// Next returns the next scalar in the iterator, erroring once exhausted.
func (it *ScalarIterator) Next() (Scalar, error) {
	if it.index >= len(it.scalars) {
		return Scalar{}, fmt.Errorf("ScalarIterator: exhausted after %d scalars", it.index)
	}

	next := it.scalars[it.index]
	it.index++
	return next, nil
}

// NumRemaining returns the count of scalars not yet consumed.
func (it *ScalarIterator) NumRemaining() int {
	return len(it.scalars) - it.index
}

// FromScalarsRecursive deserializes into s, a pointer to a struct, array, or
// ScalarSerialize-implementing value, consuming from the shared iterator.
func FromScalarsRecursive(s interface{}, scalars *ScalarIterator) error {
	if ss, ok := s.(ScalarSerialize); ok {
		return ss.FromScalars(scalars)
	}

	v := reflect.ValueOf(s)
	if v.Kind() != reflect.Ptr {
		return fmt.Errorf("FromScalarsRecursive: input must be a pointer, got %T", s)
	}
	v = v.Elem()

	switch v.Kind() {
	case reflect.Struct:
		return deserializeFields(v, structFields(v), scalars)
	case reflect.Array:
		return deserializeFields(v, arrayFields(v), scalars)
	case reflect.Ptr:
		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}
		return FromScalarsRecursive(v.Interface(), scalars)
	default:
		return fmt.Errorf("FromScalarsRecursive: unsupported type %s", v.Type())
	}
}

// deserializeFields populates each field in order from the shared iterator.
func deserializeFields(owner reflect.Value, fields []reflect.Value, scalars *ScalarIterator) error {
	for i, field := range fields {
		if !field.CanSet() {
			continue
		}

		if err := FromScalarsRecursive(field.Addr().Interface(), scalars); err != nil {
			return fmt.Errorf("deserializing field %d of %s: %w", i, owner.Type(), err)
		}
	}
	return nil
}
