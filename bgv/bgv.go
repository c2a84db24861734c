// Package bgv implements the construction of BGV contexts on top of a native
// homomorphic encryption library.
//
// Every BGV parameter has its own type (M, P, R, Bits, C, Gens, Ords, Mvec,
// Bootstrap and Bootstrappable) whose values can only be obtained through a
// validating constructor or parser. A parameter is a Metric and is applied
// to a phased Builder:
//
//	Builder          M, P, R
//	  ModulusChain(Bits, C)
//	ChainBuilder     Gens, Ords            -> Build
//	  Bootstrap(Mvec, Bootstrap)
//	BootstrapBuilder Bootstrappable        -> Build
//
// The phases guarantee that the modulus chain is set before the context is
// marked as bootstrappable, which the library requires but does not check.
// Builders are move-only and Build returns a Context owning the native handle,
// which must be released with Close.
package bgv

import (
	"github.com/Pro7ech/hebind/native"
)

// NewContext constructs the Context of the given literal parameters.
func NewContext(lib native.Library, pl ParametersLiteral, opts ...Option) (*Context, error) {
	params, err := NewParametersFromLiteral(pl)
	if err != nil {
		return nil, err
	}
	return params.Context(lib, opts...)
}
