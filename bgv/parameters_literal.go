package bgv

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParametersLiteral is a literal representation of BGV parameters. It has public
// fields and is used to express unchecked user-defined parameters literally into
// Go programs or configuration files. The NewParametersFromLiteral function is
// used to generate the actual checked parameters from the literal representation.
//
// Users must set the cyclotomic order (M). All other fields are optional: if left
// unset, the default values of the library are substituted at parameter creation
// (see NewParametersFromLiteral).
type ParametersLiteral struct {
	M              *int64 `json:"m,omitempty" yaml:"m,omitempty"`
	P              *int64 `json:"p,omitempty" yaml:"p,omitempty"`
	R              *int64 `json:"r,omitempty" yaml:"r,omitempty"`
	Bits           *int64 `json:"bits,omitempty" yaml:"bits,omitempty"`
	C              *int64 `json:"c,omitempty" yaml:"c,omitempty"`
	Gens           List   `json:"gens,omitempty" yaml:"gens,omitempty"`
	Ords           List   `json:"ords,omitempty" yaml:"ords,omitempty"`
	Mvec           List   `json:"mvec,omitempty" yaml:"mvec,omitempty"`
	Bootstrap      string `json:"bootstrap,omitempty" yaml:"bootstrap,omitempty"`
	Bootstrappable string `json:"bootstrappable,omitempty" yaml:"bootstrappable,omitempty"`
}

// List is the literal representation of a list of integers: a comma
// separated string. It can be decoded from either a JSON/YAML string
// or a JSON/YAML array of integers.
type List string

// NewList returns the List of the given integers.
func NewList[T int | int32 | int64 | uint32 | uint64](v ...T) List {
	items := make([]string, len(v))
	for i := range v {
		items[i] = strconv.FormatInt(int64(v[i]), 10)
	}
	return List(strings.Join(items, ","))
}

func (l *List) UnmarshalJSON(data []byte) error {

	data = bytes.TrimSpace(data)

	if len(data) > 0 && data[0] == '[' {
		var v []json.Number
		if err := json.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("%w: %w", ErrParse, err)
		}
		*l = joinNumbers(v)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %w", ErrParse, err)
	}

	*l = List(s)

	return nil
}

func (l *List) UnmarshalYAML(node *yaml.Node) error {

	switch node.Kind {
	case yaml.SequenceNode:
		v := make([]json.Number, len(node.Content))
		for i, item := range node.Content {
			if item.Kind != yaml.ScalarNode {
				return fmt.Errorf("%w: line %d: list items must be integers", ErrParse, item.Line)
			}
			v[i] = json.Number(item.Value)
		}
		*l = joinNumbers(v)
	case yaml.ScalarNode:
		*l = List(node.Value)
	default:
		return fmt.Errorf("%w: line %d: expected a list or a string", ErrParse, node.Line)
	}

	return nil
}

func joinNumbers(v []json.Number) List {
	items := make([]string, len(v))
	for i := range v {
		items[i] = v[i].String()
	}
	return List(strings.Join(items, ","))
}

// NewParametersFromLiteral instantiate a set of BGV parameters from a ParametersLiteral
// specification. It returns the validation errors of all the invalid fields, joined.
//
// If the P, R, Bits or C fields are unset, they are substituted by DefaultP, DefaultR,
// DefaultBits and DefaultC. Empty Gens, Ords and Mvec are valid. An empty Bootstrap is
// BootstrapNone and an empty Bootstrappable is BootstrappableUnset.
func NewParametersFromLiteral(pl ParametersLiteral) (params Parameters, err error) {

	var errs []error

	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	params = DefaultParameters()

	if pl.M == nil {
		errs = append(errs, newParameterError(FieldM, "", ErrMissing))
	} else {
		params.m, err = NewM(*pl.M)
		collect(err)
	}

	if pl.P != nil {
		params.p, err = NewP(*pl.P)
		collect(err)
	}

	if pl.R != nil {
		params.r, err = NewR(*pl.R)
		collect(err)
	}

	if pl.Bits != nil {
		params.bits, err = NewBits(*pl.Bits)
		collect(err)
	}

	if pl.C != nil {
		params.c, err = NewC(*pl.C)
		collect(err)
	}

	params.gens, err = ParseGens(string(pl.Gens))
	collect(err)

	params.ords, err = ParseOrds(string(pl.Ords))
	collect(err)

	params.mvec, err = ParseMvec(string(pl.Mvec))
	collect(err)

	if pl.Bootstrap != "" {
		params.bootstrap, err = ParseBootstrap(pl.Bootstrap)
		collect(err)
	}

	if pl.Bootstrappable != "" {
		params.bootstrappable, err = ParseBootstrappable(pl.Bootstrappable)
		collect(err)
	}

	if len(errs) == 0 {
		collect(params.checkAggregate())
	}

	if err = errors.Join(errs...); err != nil {
		return Parameters{}, err
	}

	return params, nil
}
