package bgv

import (
	"fmt"
	"strings"
)

// Field identifies a BGV parameter. Fields are declared in the order
// mandated by the context construction: M, P, R, Bits, C, Gens, Ords,
// Mvec, Bootstrap, Bootstrappable.
type Field uint8

const (
	FieldUnknown = Field(iota)
	FieldM
	FieldP
	FieldR
	FieldBits
	FieldC
	FieldGens
	FieldOrds
	FieldMvec
	FieldBootstrap
	FieldBootstrappable
)

const numFields = int(FieldBootstrappable) + 1

var fieldNames = [numFields]string{
	FieldUnknown:        "unknown",
	FieldM:              "m",
	FieldP:              "p",
	FieldR:              "r",
	FieldBits:           "bits",
	FieldC:              "c",
	FieldGens:           "gens",
	FieldOrds:           "ords",
	FieldMvec:           "mvec",
	FieldBootstrap:      "bootstrap",
	FieldBootstrappable: "bootstrappable",
}

// Fields returns all the fields in construction order.
func Fields() []Field {
	return []Field{FieldM, FieldP, FieldR, FieldBits, FieldC, FieldGens, FieldOrds, FieldMvec, FieldBootstrap, FieldBootstrappable}
}

func (f Field) String() string {
	if int(f) < numFields {
		return fieldNames[f]
	}
	return fmt.Sprintf("Field(%d)", uint8(f))
}

// ParseField returns the field named s (case-insensitive).
func ParseField(s string) (Field, error) {
	for f, name := range fieldNames[1:] {
		if strings.EqualFold(s, name) {
			return Field(f + 1), nil
		}
	}
	return FieldUnknown, fmt.Errorf("unknown BGV parameter %q", s)
}
