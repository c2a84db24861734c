// Package native is the foreign boundary of the BGV context construction.
//
// It exposes a handle-based, FFI-shaped interface (Library): builder and
// context objects live inside the library and are only reachable through
// opaque handles. Every builder setter consumes its input handle and returns
// a new one, and contexts must be released exactly once with FreeContext.
//
// The package also provides Engine, an in-process implementation that mirrors
// the HElib BGV ContextBuilder, including the generation of the modulus chain.
// Package bgv is the typed, validating layer on top of this boundary.
package native

import (
	"errors"
	"fmt"
)

// BuilderHandle is an opaque reference to a builder owned by a Library.
// The zero value is the null handle.
type BuilderHandle uint64

// ContextHandle is an opaque reference to a context owned by a Library.
// The zero value is the null handle.
type ContextHandle uint64

// BootstrapMode is the bootstrapping flavour of a context.
type BootstrapMode uint8

const (
	BootstrapNone = BootstrapMode(iota)
	BootstrapThin
	BootstrapThick
)

func (m BootstrapMode) String() string {
	switch m {
	case BootstrapNone:
		return "none"
	case BootstrapThin:
		return "thin"
	case BootstrapThick:
		return "thick"
	default:
		return fmt.Sprintf("BootstrapMode(%d)", uint8(m))
	}
}

var (
	// ErrNullHandle is returned when a null handle crosses the boundary.
	ErrNullHandle = errors.New("native: null handle")

	// ErrStaleHandle is returned when a handle that was consumed, freed
	// or never issued crosses the boundary.
	ErrStaleHandle = errors.New("native: stale handle")
)

// InvalidParameterError is returned by Build when the library rejects
// the value of a specific parameter.
type InvalidParameterError struct {
	Param  string
	Value  string
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("native: invalid parameter %s=%s: %s", e.Param, e.Value, e.Reason)
}

// Library is the capability consumed by package bgv.
//
// Numeric parameters cross the boundary at the library's native width
// (64 bits). The library does not guarantee consistent checks of the
// edge cases (zero, negative, out of range) in its setters: callers are
// responsible for range-checking before the call.
//
// A successful setter consumes its input handle and returns the handle
// under which the builder continues. A failed setter leaves its input
// handle valid.
type Library interface {
	Version() string

	NewBuilder() BuilderHandle
	FreeBuilder(h BuilderHandle) error

	SetM(h BuilderHandle, m uint64) (BuilderHandle, error)
	SetP(h BuilderHandle, p uint64) (BuilderHandle, error)
	SetR(h BuilderHandle, r uint64) (BuilderHandle, error)
	SetBits(h BuilderHandle, bits uint64) (BuilderHandle, error)
	SetC(h BuilderHandle, c uint64) (BuilderHandle, error)
	SetGens(h BuilderHandle, gens []uint64) (BuilderHandle, error)
	SetOrds(h BuilderHandle, ords []int64) (BuilderHandle, error)
	SetMvec(h BuilderHandle, mvec []uint64) (BuilderHandle, error)
	SetBootstrappable(h BuilderHandle, enabled bool) (BuilderHandle, error)
	SetThinBoot(h BuilderHandle) (BuilderHandle, error)
	SetThickBoot(h BuilderHandle) (BuilderHandle, error)

	// Build consumes the builder handle, whether it succeeds or not.
	Build(h BuilderHandle) (ContextHandle, error)
	FreeContext(c ContextHandle) error

	GetM(c ContextHandle) (uint64, error)
	GetP(c ContextHandle) (uint64, error)
	GetR(c ContextHandle) (uint64, error)
	GetBits(c ContextHandle) (uint64, error)
	GetC(c ContextHandle) (uint64, error)
	GetGens(c ContextHandle) ([]uint64, error)
	GetOrds(c ContextHandle) ([]int64, error)
	GetMvec(c ContextHandle) ([]uint64, error)
	GetBootstrapMode(c ContextHandle) (BootstrapMode, error)
	GetBootstrappable(c ContextHandle) (bool, error)

	GetPhiM(c ContextHandle) (uint64, error)
	GetOrdP(c ContextHandle) (uint64, error)
	GetNSlots(c ContextHandle) (uint64, error)
	GetCtxtPrimes(c ContextHandle) ([]uint64, error)
	GetSpecialPrimes(c ContextHandle) ([]uint64, error)
	GetBootstrapChainBits(c ContextHandle) (uint64, error)
}
