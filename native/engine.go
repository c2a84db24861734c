package native

import (
	"sync"

	"go.uber.org/zap"
)

const (
	// EngineVersion is the version reported by Engine.Version.
	EngineVersion = "2.3.0"

	// CtxtPrimeBits is the target bit-size of the ciphertext primes.
	CtxtPrimeBits = 60

	// DefaultMaxModulusBits is the default upper bound on the modulus chain bit budget.
	DefaultMaxModulusBits = 8192

	// DefaultMaxDeriveM is the default largest cyclotomic order for which
	// the generators of the slot group are derived when none are provided.
	DefaultMaxDeriveM = 1 << 22
)

// Builder defaults, identical to HElib's ContextBuilder<BGV>.
const (
	defaultM    = 3
	defaultP    = 2
	defaultR    = 1
	defaultBits = 300
	defaultC    = 3
)

type builderState struct {
	m, p, r, bits, c uint64
	gens, mvec       []uint64
	ords             []int64
	bootstrappable   bool
	mode             BootstrapMode

	// modulus chain size at the time bootstrapping was enabled
	bootChainBits uint64
}

// Engine is an in-process Library. It is safe for concurrent use:
// handle tables are guarded by a mutex and context construction runs
// outside of it.
type Engine struct {
	mu       sync.Mutex
	next     uint64
	builders map[BuilderHandle]*builderState
	contexts map[ContextHandle]*contextState

	logger         *zap.Logger
	maxModulusBits uint64
	maxDeriveM     uint64
}

// Option configures an Engine.
type Option func(e *Engine)

// WithLogger sets the logger of the Engine.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMaxModulusBits sets the largest accepted modulus chain bit budget.
func WithMaxModulusBits(bits uint64) Option {
	return func(e *Engine) {
		e.maxModulusBits = bits
	}
}

// WithMaxDeriveM sets the largest cyclotomic order for which generators
// are derived automatically.
func WithMaxDeriveM(m uint64) Option {
	return func(e *Engine) {
		e.maxDeriveM = m
	}
}

// NewEngine instantiates a new Engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		builders:       map[BuilderHandle]*builderState{},
		contexts:       map[ContextHandle]*contextState{},
		logger:         zap.NewNop(),
		maxModulusBits: DefaultMaxModulusBits,
		maxDeriveM:     DefaultMaxDeriveM,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Version returns the version of the engine.
func (e *Engine) Version() string {
	return EngineVersion
}

// Live returns the number of builders and contexts that have
// not been consumed or freed.
func (e *Engine) Live() (builders, contexts int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.builders), len(e.contexts)
}

// issue must be called with e.mu held.
func (e *Engine) issue() uint64 {
	e.next++
	return e.next
}

// NewBuilder allocates a builder initialized with the default parameters.
func (e *Engine) NewBuilder() BuilderHandle {
	e.mu.Lock()
	defer e.mu.Unlock()
	h := BuilderHandle(e.issue())
	e.builders[h] = &builderState{
		m:    defaultM,
		p:    defaultP,
		r:    defaultR,
		bits: defaultBits,
		c:    defaultC,
	}
	return h
}

// FreeBuilder releases a builder that will not be built.
func (e *Engine) FreeBuilder(h BuilderHandle) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, err := e.builder(h); err != nil {
		return err
	}
	delete(e.builders, h)
	return nil
}

// builder must be called with e.mu held.
func (e *Engine) builder(h BuilderHandle) (*builderState, error) {
	if h == 0 {
		return nil, ErrNullHandle
	}
	s, ok := e.builders[h]
	if !ok {
		return nil, ErrStaleHandle
	}
	return s, nil
}

// update applies f on the builder referenced by h, invalidates h and
// returns the handle under which the builder is now reachable.
func (e *Engine) update(h BuilderHandle, f func(s *builderState)) (BuilderHandle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.builder(h)
	if err != nil {
		return 0, err
	}

	f(s)

	delete(e.builders, h)
	next := BuilderHandle(e.issue())
	e.builders[next] = s

	return next, nil
}

func (e *Engine) SetM(h BuilderHandle, m uint64) (BuilderHandle, error) {
	return e.update(h, func(s *builderState) { s.m = m })
}

func (e *Engine) SetP(h BuilderHandle, p uint64) (BuilderHandle, error) {
	return e.update(h, func(s *builderState) { s.p = p })
}

func (e *Engine) SetR(h BuilderHandle, r uint64) (BuilderHandle, error) {
	return e.update(h, func(s *builderState) { s.r = r })
}

func (e *Engine) SetBits(h BuilderHandle, bits uint64) (BuilderHandle, error) {
	return e.update(h, func(s *builderState) { s.bits = bits })
}

func (e *Engine) SetC(h BuilderHandle, c uint64) (BuilderHandle, error) {
	return e.update(h, func(s *builderState) { s.c = c })
}

func (e *Engine) SetGens(h BuilderHandle, gens []uint64) (BuilderHandle, error) {
	return e.update(h, func(s *builderState) { s.gens = append([]uint64{}, gens...) })
}

func (e *Engine) SetOrds(h BuilderHandle, ords []int64) (BuilderHandle, error) {
	return e.update(h, func(s *builderState) { s.ords = append([]int64{}, ords...) })
}

func (e *Engine) SetMvec(h BuilderHandle, mvec []uint64) (BuilderHandle, error) {
	return e.update(h, func(s *builderState) { s.mvec = append([]uint64{}, mvec...) })
}

// SetBootstrappable marks the context as bootstrappable. The bootstrapping
// data is prepared for the modulus chain configured at the time of the call:
// the chain (SetBits, SetC) must be set before.
func (e *Engine) SetBootstrappable(h BuilderHandle, enabled bool) (BuilderHandle, error) {
	return e.update(h, func(s *builderState) {
		s.bootstrappable = enabled
		if enabled {
			s.bootChainBits = s.bits
		} else {
			s.bootChainBits = 0
		}
	})
}

func (e *Engine) SetThinBoot(h BuilderHandle) (BuilderHandle, error) {
	return e.update(h, func(s *builderState) { s.mode = BootstrapThin })
}

func (e *Engine) SetThickBoot(h BuilderHandle) (BuilderHandle, error) {
	return e.update(h, func(s *builderState) { s.mode = BootstrapThick })
}

// Build consumes the builder and constructs the context.
func (e *Engine) Build(h BuilderHandle) (ContextHandle, error) {

	e.mu.Lock()
	s, err := e.builder(h)
	if err != nil {
		e.mu.Unlock()
		return 0, err
	}
	delete(e.builders, h)
	e.mu.Unlock()

	cs, err := e.construct(s)
	if err != nil {
		e.logger.Debug("context construction failed", zap.Error(err))
		return 0, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	c := ContextHandle(e.issue())
	e.contexts[c] = cs

	return c, nil
}

// FreeContext releases a context. Freeing a context twice returns ErrStaleHandle.
func (e *Engine) FreeContext(c ContextHandle) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, err := e.context(c); err != nil {
		return err
	}
	delete(e.contexts, c)
	return nil
}
