package bgv

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Pro7ech/hebind/native"
	"github.com/google/go-cmp/cmp"
)

// Default values of the parameters, identical to the defaults of the
// library context builder. They are checked at package initialization.
var (
	DefaultM    = must(NewM(3))
	DefaultP    = must(NewP(2))
	DefaultR    = must(NewR(1))
	DefaultC    = must(NewC(3))
	DefaultBits = must(NewBits(300))
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(fmt.Errorf("bgv: invalid default: %w", err))
	}
	return v
}

// Parameters is a complete set of validated BGV parameters.
// A Parameters can only be obtained from DefaultParameters,
// NewParametersFromLiteral or Context.Parameters.
type Parameters struct {
	m              M
	p              P
	r              R
	bits           Bits
	c              C
	gens           Gens
	ords           Ords
	mvec           Mvec
	bootstrap      Bootstrap
	bootstrappable Bootstrappable
}

// DefaultParameters returns the default parameters.
func DefaultParameters() Parameters {
	return Parameters{
		m:    DefaultM,
		p:    DefaultP,
		r:    DefaultR,
		bits: DefaultBits,
		c:    DefaultC,
	}
}

// NewParameters aggregates already validated primitives and checks the
// invariants that relate them.
func NewParameters(m M, p P, r R, bits Bits, c C, gens Gens, ords Ords, mvec Mvec, bootstrap Bootstrap, bootstrappable Bootstrappable) (params Parameters, err error) {

	params = Parameters{
		m:              m,
		p:              p,
		r:              r,
		bits:           bits,
		c:              c,
		gens:           gens,
		ords:           ords,
		mvec:           mvec,
		bootstrap:      bootstrap,
		bootstrappable: bootstrappable,
	}

	var errs []error
	for _, metric := range params.Metrics() {
		if err := metric.validate(); err != nil {
			errs = append(errs, err)
		}
	}

	if err = params.checkAggregate(); err != nil {
		errs = append(errs, err)
	}

	if err = errors.Join(errs...); err != nil {
		return Parameters{}, err
	}

	return params, nil
}

func (p Parameters) checkAggregate() error {

	if p.ords.Len() != p.gens.Len() {
		return newParameterError(FieldOrds, p.ords, fmt.Errorf("%w: len(ords)=%d != len(gens)=%d", ErrLengthMismatch, p.ords.Len(), p.gens.Len()))
	}

	if p.bootstrap.Enabled() && p.bootstrappable == BootstrappableDisabled {
		return newParameterError(FieldBootstrappable, p.bootstrappable, fmt.Errorf("%w: %s bootstrapping requires a bootstrappable context", ErrConflict, p.bootstrap))
	}

	return nil
}

func (p Parameters) M() M                           { return p.m }
func (p Parameters) P() P                           { return p.p }
func (p Parameters) R() R                           { return p.r }
func (p Parameters) Bits() Bits                     { return p.bits }
func (p Parameters) C() C                           { return p.c }
func (p Parameters) Gens() Gens                     { return p.gens }
func (p Parameters) Ords() Ords                     { return p.ords }
func (p Parameters) Mvec() Mvec                     { return p.mvec }
func (p Parameters) Bootstrap() Bootstrap           { return p.bootstrap }
func (p Parameters) Bootstrappable() Bootstrappable { return p.bootstrappable }

// Metrics returns the parameters in construction order.
func (p Parameters) Metrics() []Metric {
	return []Metric{p.m, p.p, p.r, p.bits, p.c, p.gens, p.ords, p.mvec, p.bootstrap, p.bootstrappable}
}

// ParametersLiteral returns the ParametersLiteral of the target Parameters.
func (p Parameters) ParametersLiteral() ParametersLiteral {

	ptr := func(s scalar) *int64 {
		v := int64(s.v)
		return &v
	}

	return ParametersLiteral{
		M:              ptr(p.m.scalar),
		P:              ptr(p.p.scalar),
		R:              ptr(p.r.scalar),
		Bits:           ptr(p.bits.scalar),
		C:              ptr(p.c.scalar),
		Gens:           List(p.gens.String()),
		Ords:           List(p.ords.String()),
		Mvec:           List(p.mvec.String()),
		Bootstrap:      p.bootstrap.String(),
		Bootstrappable: p.bootstrappable.String(),
	}
}

// Equal returns true if both Parameters are identical.
func (p Parameters) Equal(other Parameters) bool {
	return cmp.Equal(p.ParametersLiteral(), other.ParametersLiteral())
}

// String returns the parameters as a single line.
func (p Parameters) String() string {
	return fmt.Sprintf("m=%s p=%s r=%s bits=%s c=%s gens=[%s] ords=[%s] mvec=[%s] bootstrap=%s bootstrappable=%s",
		p.m, p.p, p.r, p.bits, p.c, p.gens, p.ords, p.mvec, p.bootstrap, p.bootstrappable)
}

// MarshalJSON encodes the parameters as their ParametersLiteral.
func (p Parameters) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.ParametersLiteral())
}

// UnmarshalJSON decodes a ParametersLiteral and validates it.
func (p *Parameters) UnmarshalJSON(data []byte) (err error) {
	var pl ParametersLiteral
	if err = json.Unmarshal(data, &pl); err != nil {
		return
	}
	*p, err = NewParametersFromLiteral(pl)
	return
}

// Builder returns a Builder on which the parameters of the base phase
// (M, P, R) are set.
func (p Parameters) Builder(lib native.Library, opts ...Option) (b *Builder, err error) {

	b = NewBuilder(lib, opts...)

	for _, metric := range []Metric{p.m, p.p, p.r} {
		next, err := b.Set(metric)
		if err != nil {
			b.Close()
			return nil, err
		}
		b = next
	}

	return b, nil
}

// Context constructs a Context from the parameters. The parameters are
// applied in the order M, P, R, Bits, C, Gens, Ords, Mvec, Bootstrap,
// Bootstrappable.
func (p Parameters) Context(lib native.Library, opts ...Option) (ctx *Context, err error) {

	b, err := p.Builder(lib, opts...)
	if err != nil {
		return nil, err
	}

	chain, err := b.ModulusChain(p.bits, p.c)
	if err != nil {
		b.Close()
		return nil, err
	}

	for _, metric := range []Metric{p.gens, p.ords} {
		next, err := chain.Set(metric)
		if err != nil {
			chain.Close()
			return nil, err
		}
		chain = next
	}

	if p.mvec.Len() == 0 && !p.bootstrap.Enabled() && p.bootstrappable == BootstrappableUnset {
		return chain.Build()
	}

	boot, err := chain.Bootstrap(p.mvec, p.bootstrap)
	if err != nil {
		chain.Close()
		return nil, err
	}

	next, err := boot.Set(p.bootstrappable)
	if err != nil {
		boot.Close()
		return nil, err
	}

	return next.Build()
}
