package bgv

import (
	"errors"
	"fmt"
	"time"

	"github.com/Pro7ech/hebind/native"
	"github.com/Pro7ech/hebind/utils"
	"go.uber.org/zap"
)

// Option configures a Builder.
type Option func(b *core)

// WithLogger sets the logger of the Builder and of the Context it builds.
func WithLogger(logger *zap.Logger) Option {
	return func(b *core) {
		b.logger = logger
	}
}

// core is the state shared by the phases of the builder. It is owned by
// exactly one phase value at any time.
type core struct {
	lib    native.Library
	logger *zap.Logger
	state  state

	// released is set when the library handle had to be freed after a
	// partially applied call; the builder cannot be used anymore.
	released bool
}

// state is the part of the core updated by the library calls. It is
// copied and only committed once all the calls of a Set or of a phase
// transition have succeeded.
type state struct {
	handle native.BuilderHandle

	set  [numFields]bool
	last Field

	gens Gens
	mode Bootstrap
}

// Builder is the first phase of the construction of a Context. It
// accepts M, P and R, in this order. Each parameter is optional except M.
//
// Builders are move-only: a successful call to Set, ModulusChain or
// Build consumes the receiver, which must not be used anymore. A failed
// call leaves the receiver unchanged, unless the library failed after
// it had already re-issued the handle, in which case the builder is
// released and every later call returns UseAfterMove.
type Builder struct {
	core *core
}

// ChainBuilder is the phase of a builder whose modulus chain is set.
// It accepts Gens and Ords, in this order.
type ChainBuilder struct {
	core *core
}

// BootstrapBuilder is the phase of a builder whose bootstrapping data
// (Mvec and Bootstrap) is set. It accepts Bootstrappable.
type BootstrapBuilder struct {
	core *core
}

// NewBuilder allocates a new builder from the library.
// The library is initialized with its default parameters, but M must
// always be set explicitly.
func NewBuilder(lib native.Library, opts ...Option) *Builder {

	c := &core{
		lib:    lib,
		logger: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.state.handle = lib.NewBuilder()

	return &Builder{core: c}
}

var errMoved = &ConstructionError{Kind: UseAfterMove, Msg: "builder already consumed"}

// take returns the core and invalidates the owner.
func take(c **core) (*core, error) {
	if *c == nil || (*c).released {
		*c = nil
		return nil, errMoved
	}
	x := *c
	*c = nil
	return x, nil
}

// Set applies M, P or R and returns the builder under which the
// construction continues.
func (b *Builder) Set(m Metric) (*Builder, error) {
	if b == nil {
		return nil, errMoved
	}
	if err := b.core.run(FieldM, FieldR, m); err != nil {
		return nil, err
	}
	c, _ := take(&b.core)
	return &Builder{core: c}, nil
}

// TrySet validates raw as a value of field and applies it.
// See NewMetric for the accepted types.
func (b *Builder) TrySet(field Field, raw any) (*Builder, error) {
	m, err := NewMetric(field, raw)
	if err != nil {
		return nil, err
	}
	return b.Set(m)
}

// ModulusChain sets the modulus chain and moves the builder to the next
// phase. The modulus chain must be set before the context is marked as
// bootstrappable.
func (b *Builder) ModulusChain(bits Bits, c C) (*ChainBuilder, error) {
	if b == nil {
		return nil, errMoved
	}
	if err := b.core.run(FieldBits, FieldC, bits, c); err != nil {
		return nil, err
	}
	x, _ := take(&b.core)
	return &ChainBuilder{core: x}, nil
}

// Close releases the builder without building it.
func (b *Builder) Close() error {
	if b == nil {
		return errMoved
	}
	return closeCore(&b.core)
}

// Set applies Gens or Ords and returns the builder under which the
// construction continues.
func (b *ChainBuilder) Set(m Metric) (*ChainBuilder, error) {
	if b == nil {
		return nil, errMoved
	}
	if err := b.core.run(FieldGens, FieldOrds, m); err != nil {
		return nil, err
	}
	c, _ := take(&b.core)
	return &ChainBuilder{core: c}, nil
}

// TrySet validates raw as a value of field and applies it.
func (b *ChainBuilder) TrySet(field Field, raw any) (*ChainBuilder, error) {
	m, err := NewMetric(field, raw)
	if err != nil {
		return nil, err
	}
	return b.Set(m)
}

// Bootstrap sets the bootstrapping data and moves the builder to the next
// phase. If mode is thin or thick, the context is marked as bootstrappable.
func (b *ChainBuilder) Bootstrap(mvec Mvec, mode Bootstrap) (*BootstrapBuilder, error) {
	if b == nil {
		return nil, errMoved
	}
	if err := b.core.checkOrds(); err != nil {
		return nil, err
	}
	if err := b.core.run(FieldMvec, FieldBootstrap, mvec, mode); err != nil {
		return nil, err
	}
	c, _ := take(&b.core)
	return &BootstrapBuilder{core: c}, nil
}

// Build consumes the builder and constructs the Context.
func (b *ChainBuilder) Build() (*Context, error) {
	if b == nil {
		return nil, errMoved
	}
	if err := b.core.checkOrds(); err != nil {
		return nil, err
	}
	c, _ := take(&b.core)
	return c.build()
}

// Close releases the builder without building it.
func (b *ChainBuilder) Close() error {
	if b == nil {
		return errMoved
	}
	return closeCore(&b.core)
}

// Set applies Bootstrappable and returns the builder under which the
// construction continues.
func (b *BootstrapBuilder) Set(m Metric) (*BootstrapBuilder, error) {
	if b == nil {
		return nil, errMoved
	}
	if err := b.core.run(FieldBootstrappable, FieldBootstrappable, m); err != nil {
		return nil, err
	}
	c, _ := take(&b.core)
	return &BootstrapBuilder{core: c}, nil
}

// TrySet validates raw as a value of field and applies it.
func (b *BootstrapBuilder) TrySet(field Field, raw any) (*BootstrapBuilder, error) {
	m, err := NewMetric(field, raw)
	if err != nil {
		return nil, err
	}
	return b.Set(m)
}

// Build consumes the builder and constructs the Context.
func (b *BootstrapBuilder) Build() (*Context, error) {
	if b == nil {
		return nil, errMoved
	}
	c, err := take(&b.core)
	if err != nil {
		return nil, err
	}
	return c.build()
}

// Close releases the builder without building it.
func (b *BootstrapBuilder) Close() error {
	if b == nil {
		return errMoved
	}
	return closeCore(&b.core)
}

func closeCore(c **core) error {
	x, err := take(c)
	if err != nil {
		return err
	}
	if err = x.lib.FreeBuilder(x.state.handle); err != nil {
		return nativeError(FieldUnknown, err)
	}
	return nil
}

func (c *core) usable() error {
	if c == nil || c.released {
		return errMoved
	}
	return nil
}

// run applies the metrics, in order, on a copy of the state of the
// builder, which is committed only if the library accepted all of them.
// No library call is made unless every metric passes its checks.
func (c *core) run(lo, hi Field, metrics ...Metric) (err error) {

	if err = c.usable(); err != nil {
		return
	}

	for _, m := range metrics {
		if err = c.state.check(m, lo, hi); err != nil {
			return
		}
	}

	s := c.state

	for _, m := range metrics {
		if err = c.apply(&s, m, lo, hi); err != nil {
			break
		}
	}

	if err != nil {
		// The library consumed the committed handle: the builder only
		// survives under the handle of a partially applied state.
		if s.handle != c.state.handle {
			c.release(s.handle, err)
		}
		return
	}

	c.state = s

	for _, m := range metrics {
		c.logger.Debug("parameter set", zap.Stringer("field", m.Field()), zap.Stringer("value", m))
	}

	return nil
}

// release frees the handle of a partially applied state and poisons
// the builder.
func (c *core) release(h native.BuilderHandle, cause error) {

	c.released = true
	c.state.handle = 0

	c.logger.Warn("builder released after a partially applied call", zap.Error(cause))

	if h == 0 {
		return
	}

	if err := c.lib.FreeBuilder(h); err != nil {
		c.logger.Warn("failed to free builder", zap.Error(err))
	}
}

func (s *state) check(m Metric, lo, hi Field) error {

	if m == nil {
		return &ConstructionError{Kind: InvalidParameter, Msg: "nil metric"}
	}

	f := m.Field()

	if f < lo || f > hi {
		return &ConstructionError{
			Kind:  OutOfOrder,
			Field: f,
			Msg:   fmt.Sprintf("%s cannot be set in this phase, which accepts %s to %s", f, lo, hi),
		}
	}

	if s.set[f] {
		return &ConstructionError{Kind: Duplicate, Field: f, Msg: f.String() + " is already set"}
	}

	if f < s.last {
		return &ConstructionError{
			Kind:  OutOfOrder,
			Field: f,
			Msg:   fmt.Sprintf("%s must be set before %s", f, s.last),
		}
	}

	if err := m.validate(); err != nil {
		return err
	}

	switch m := m.(type) {
	case Ords:
		if m.Len() != s.gens.Len() {
			return newParameterError(FieldOrds, m, fmt.Errorf("%w: len(ords)=%d != len(gens)=%d", ErrLengthMismatch, m.Len(), s.gens.Len()))
		}
	case Bootstrappable:
		if m == BootstrappableDisabled && s.mode.Enabled() {
			return newParameterError(FieldBootstrappable, m, fmt.Errorf("%w: %s bootstrapping requires a bootstrappable context", ErrConflict, s.mode))
		}
	}

	return nil
}

// checkOrds checks that Ords matches Gens when the generators phase is left.
func (c *core) checkOrds() error {
	if err := c.usable(); err != nil {
		return err
	}
	if !c.state.set[FieldOrds] && c.state.gens.Len() != 0 {
		return newParameterError(FieldOrds, "", fmt.Errorf("%w: len(ords)=0 != len(gens)=%d", ErrLengthMismatch, c.state.gens.Len()))
	}
	return nil
}

// apply checks the metric against s and forwards it to the library.
// s.handle always holds the last handle issued by the library, also
// when a later library call of the same metric fails.
func (c *core) apply(s *state, m Metric, lo, hi Field) (err error) {

	if err = s.check(m, lo, hi); err != nil {
		return err
	}

	h := s.handle

	switch m := m.(type) {
	case M:
		h, err = c.lib.SetM(h, uint64(m.v))
	case P:
		h, err = c.lib.SetP(h, uint64(m.v))
	case R:
		h, err = c.lib.SetR(h, uint64(m.v))
	case Bits:
		h, err = c.lib.SetBits(h, uint64(m.v))
	case C:
		h, err = c.lib.SetC(h, uint64(m.v))
	case Gens:
		h, err = c.lib.SetGens(h, utils.ConvertSlice[uint64](m.v))
	case Ords:
		h, err = c.lib.SetOrds(h, utils.ConvertSlice[int64](m.v))
	case Mvec:
		h, err = c.lib.SetMvec(h, utils.ConvertSlice[uint64](m.v))
	case Bootstrap:
		switch m {
		case BootstrapThin:
			if h, err = c.lib.SetBootstrappable(h, true); err == nil {
				s.handle = h
				h, err = c.lib.SetThinBoot(h)
			}
		case BootstrapThick:
			if h, err = c.lib.SetBootstrappable(h, true); err == nil {
				s.handle = h
				h, err = c.lib.SetThickBoot(h)
			}
		}
	case Bootstrappable:
		switch m {
		case BootstrappableEnabled:
			h, err = c.lib.SetBootstrappable(h, true)
		case BootstrappableDisabled:
			h, err = c.lib.SetBootstrappable(h, false)
		}
	default:
		panic(fmt.Errorf("bgv: unhandled metric %T", m))
	}

	if err != nil {
		return nativeError(m.Field(), err)
	}

	if h == 0 {
		// the input handle was consumed
		s.handle = 0
		return &ConstructionError{Kind: NullHandle, Field: m.Field(), Msg: "library returned a null builder"}
	}

	s.handle = h
	s.set[m.Field()] = true
	s.last = m.Field()

	switch m := m.(type) {
	case Gens:
		s.gens = m
	case Bootstrap:
		s.mode = m
	}

	return nil
}

func (c *core) build() (ctx *Context, err error) {

	if !c.state.set[FieldM] {
		if err := c.lib.FreeBuilder(c.state.handle); err != nil {
			c.logger.Warn("failed to free builder", zap.Error(err))
		}
		return nil, &ConstructionError{Kind: MissingField, Field: FieldM, Msg: "the cyclotomic order must be set"}
	}

	start := time.Now()

	h, err := c.lib.Build(c.state.handle)
	if err != nil {
		err = nativeError(FieldUnknown, err)
		c.logger.Warn("context construction failed", zap.Error(err))
		return nil, err
	}

	if h == 0 {
		err = &ConstructionError{Kind: NullHandle, Msg: "library returned a null context"}
		c.logger.Warn("context construction failed", zap.Error(err))
		return nil, err
	}

	ctx = newContext(c.lib, h, c.logger)

	if err = ctx.checkBootstrapChain(); err != nil {
		ctx.Close()
		c.logger.Warn("context construction failed", zap.Error(err))
		return nil, err
	}

	c.logger.Info("context built", zap.Duration("elapsed", time.Since(start)), zap.String("version", c.lib.Version()))

	return ctx, nil
}

// nativeError translates an error of the library into a *ConstructionError.
func nativeError(f Field, err error) error {

	var perr *native.InvalidParameterError
	if errors.As(err, &perr) {
		if pf, ferr := ParseField(perr.Param); ferr == nil {
			f = pf
		}
		return &ConstructionError{Kind: InvalidParameter, Field: f, Err: err}
	}

	if errors.Is(err, native.ErrNullHandle) {
		return &ConstructionError{Kind: NullHandle, Field: f, Err: err}
	}

	return &ConstructionError{Kind: Native, Field: f, Err: err}
}
