package bgv

import (
	"fmt"
	"strconv"
)

// Metric is a single validated BGV parameter. It is implemented by
// exactly the parameter types of this package: M, P, R, Bits, C, Gens,
// Ords, Mvec, Bootstrap and Bootstrappable. Any of these values can be
// used as a Metric as is.
type Metric interface {
	fmt.Stringer
	Field() Field
	validate() error
}

var (
	_ Metric = M{}
	_ Metric = P{}
	_ Metric = R{}
	_ Metric = Bits{}
	_ Metric = C{}
	_ Metric = Gens{}
	_ Metric = Ords{}
	_ Metric = Mvec{}
	_ Metric = Bootstrap(0)
	_ Metric = Bootstrappable(0)
)

// NewMetric validates raw as a value of the given field. raw can be a
// string (parsed), any integer type (scalar fields), a slice of integers
// (list fields), a bool (Bootstrappable) or a Metric of the same field.
func NewMetric(field Field, raw any) (Metric, error) {

	if m, ok := raw.(Metric); ok {
		if m.Field() != field {
			return nil, newParameterError(field, m, fmt.Errorf("%w: got a value of %s", ErrConflict, m.Field()))
		}
		if err := m.validate(); err != nil {
			return nil, err
		}
		return m, nil
	}

	if s, ok := raw.(string); ok {
		return parseMetric(field, s)
	}

	switch field {
	case FieldM, FieldP, FieldR, FieldBits, FieldC:
		return newScalarMetric(field, raw)
	case FieldGens, FieldOrds, FieldMvec:
		return newListMetric(field, raw)
	case FieldBootstrappable:
		if b, ok := raw.(bool); ok {
			return NewBootstrappable(b), nil
		}
	}

	if field == FieldUnknown || int(field) >= numFields {
		return nil, newParameterError(field, raw, fmt.Errorf("%w: unknown field", ErrUnknownMode))
	}

	return nil, newParameterError(field, raw, fmt.Errorf("%w: unsupported type %T", ErrParse, raw))
}

func parseMetric(field Field, s string) (Metric, error) {
	switch field {
	case FieldM:
		return ParseM(s)
	case FieldP:
		return ParseP(s)
	case FieldR:
		return ParseR(s)
	case FieldBits:
		return ParseBits(s)
	case FieldC:
		return ParseC(s)
	case FieldGens:
		return ParseGens(s)
	case FieldOrds:
		return ParseOrds(s)
	case FieldMvec:
		return ParseMvec(s)
	case FieldBootstrap:
		return ParseBootstrap(s)
	case FieldBootstrappable:
		return ParseBootstrappable(s)
	default:
		return nil, newParameterError(field, s, fmt.Errorf("%w: unknown field", ErrUnknownMode))
	}
}

// newScalarMetric dispatches the integer types to the generic constructors.
func newScalarMetric(field Field, raw any) (Metric, error) {
	switch v := raw.(type) {
	case int:
		return scalarMetric(field, v)
	case int8:
		return scalarMetric(field, v)
	case int16:
		return scalarMetric(field, v)
	case int32:
		return scalarMetric(field, v)
	case int64:
		return scalarMetric(field, v)
	case uint:
		return scalarMetric(field, v)
	case uint8:
		return scalarMetric(field, v)
	case uint16:
		return scalarMetric(field, v)
	case uint32:
		return scalarMetric(field, v)
	case uint64:
		return scalarMetric(field, v)
	case float64:
		// JSON numbers
		if v != float64(int64(v)) {
			return nil, newParameterError(field, strconv.FormatFloat(v, 'g', -1, 64), ErrParse)
		}
		return scalarMetric(field, int64(v))
	default:
		return nil, newParameterError(field, raw, fmt.Errorf("%w: unsupported type %T", ErrParse, raw))
	}
}

func scalarMetric[T int | int8 | int16 | int32 | int64 | uint | uint8 | uint16 | uint32 | uint64](field Field, v T) (Metric, error) {
	switch field {
	case FieldM:
		return NewM(v)
	case FieldP:
		return NewP(v)
	case FieldR:
		return NewR(v)
	case FieldBits:
		return NewBits(v)
	default:
		return NewC(v)
	}
}

func newListMetric(field Field, raw any) (Metric, error) {
	switch v := raw.(type) {
	case []int:
		return listMetric(field, v)
	case []int32:
		return listMetric(field, v)
	case []int64:
		return listMetric(field, v)
	case []uint:
		return listMetric(field, v)
	case []uint32:
		return listMetric(field, v)
	case []uint64:
		return listMetric(field, v)
	default:
		return nil, newParameterError(field, raw, fmt.Errorf("%w: unsupported type %T", ErrParse, raw))
	}
}

func listMetric[T int | int32 | int64 | uint | uint32 | uint64](field Field, v []T) (Metric, error) {
	switch field {
	case FieldGens:
		return NewGens(v...)
	case FieldOrds:
		return NewOrds(v...)
	default:
		return NewMvec(v...)
	}
}
