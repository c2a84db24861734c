package bgv

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"runtime"
	"strings"
	"sync"

	"github.com/Pro7ech/hebind/native"
	"github.com/Pro7ech/hebind/utils/bignum"
	"github.com/montanaflynn/stats"
	"github.com/zeebo/blake3"
	"go.uber.org/zap"
)

// logQPrec is the precision, in bits, used to compute log2(Q).
const logQPrec = 128

// Context is a BGV context constructed by the library. It owns the
// library handle, which is released by Close. Read accessors can be
// called concurrently.
type Context struct {
	mu     sync.RWMutex
	lib    native.Library
	handle native.ContextHandle
	logger *zap.Logger
}

func newContext(lib native.Library, h native.ContextHandle, logger *zap.Logger) (ctx *Context) {
	ctx = &Context{lib: lib, handle: h, logger: logger}
	runtime.SetFinalizer(ctx, func(ctx *Context) {
		if err := ctx.Close(); err == nil {
			ctx.logger.Warn("context released by finalizer: Close was not called")
		}
	})
	return
}

// Close releases the context. It returns a *ConstructionError of kind
// Closed if the context was already closed.
func (ctx *Context) Close() error {

	ctx.mu.Lock()
	defer ctx.mu.Unlock()

	if ctx.handle == 0 {
		return &ConstructionError{Kind: Closed, Err: ErrClosed}
	}

	h := ctx.handle
	ctx.handle = 0
	runtime.SetFinalizer(ctx, nil)

	if err := ctx.lib.FreeContext(h); err != nil {
		return nativeError(FieldUnknown, err)
	}

	return nil
}

// read calls f with the handle of the context, which is guaranteed to
// stay valid for the duration of the call.
func read[T any](ctx *Context, f Field, get func(h native.ContextHandle) (T, error)) (v T, err error) {

	ctx.mu.RLock()
	defer ctx.mu.RUnlock()

	if ctx.handle == 0 {
		return v, &ConstructionError{Kind: Closed, Field: f, Err: ErrClosed}
	}

	if v, err = get(ctx.handle); err != nil {
		return v, nativeError(f, err)
	}

	return v, nil
}

// convert maps the validation error of a value read back from the library
// to a conversion error.
func convert[T any](v T, err error) (T, error) {
	if perr, ok := err.(*ParameterError); ok {
		return v, &ParameterError{Field: perr.Field, Value: perr.Value, Err: fmt.Errorf("%w: %w", ErrConversion, perr.Err)}
	}
	return v, err
}

func (ctx *Context) M() (M, error) {
	v, err := read(ctx, FieldM, ctx.lib.GetM)
	if err != nil {
		return M{}, err
	}
	return convert(NewM(v))
}

func (ctx *Context) P() (P, error) {
	v, err := read(ctx, FieldP, ctx.lib.GetP)
	if err != nil {
		return P{}, err
	}
	return convert(NewP(v))
}

func (ctx *Context) R() (R, error) {
	v, err := read(ctx, FieldR, ctx.lib.GetR)
	if err != nil {
		return R{}, err
	}
	return convert(NewR(v))
}

func (ctx *Context) Bits() (Bits, error) {
	v, err := read(ctx, FieldBits, ctx.lib.GetBits)
	if err != nil {
		return Bits{}, err
	}
	return convert(NewBits(v))
}

func (ctx *Context) C() (C, error) {
	v, err := read(ctx, FieldC, ctx.lib.GetC)
	if err != nil {
		return C{}, err
	}
	return convert(NewC(v))
}

// Gens returns the generators of the slot group. If none were set, these
// are the generators derived by the library.
func (ctx *Context) Gens() (Gens, error) {
	v, err := read(ctx, FieldGens, ctx.lib.GetGens)
	if err != nil {
		return Gens{}, err
	}
	return convert(NewGens(v...))
}

// Ords returns the orders matching Gens.
func (ctx *Context) Ords() (Ords, error) {
	v, err := read(ctx, FieldOrds, ctx.lib.GetOrds)
	if err != nil {
		return Ords{}, err
	}
	return convert(NewOrds(v...))
}

func (ctx *Context) Mvec() (Mvec, error) {
	v, err := read(ctx, FieldMvec, ctx.lib.GetMvec)
	if err != nil {
		return Mvec{}, err
	}
	return convert(NewMvec(v...))
}

func (ctx *Context) Bootstrap() (Bootstrap, error) {

	mode, err := read(ctx, FieldBootstrap, ctx.lib.GetBootstrapMode)
	if err != nil {
		return BootstrapNone, err
	}

	switch mode {
	case native.BootstrapNone:
		return BootstrapNone, nil
	case native.BootstrapThin:
		return BootstrapThin, nil
	case native.BootstrapThick:
		return BootstrapThick, nil
	default:
		return BootstrapNone, newParameterError(FieldBootstrap, mode, fmt.Errorf("%w: %w", ErrConversion, ErrUnknownMode))
	}
}

// Bootstrappable returns BootstrappableEnabled or BootstrappableDisabled.
// The library does not distinguish an unset value from a disabled one.
func (ctx *Context) Bootstrappable() (Bootstrappable, error) {
	v, err := read(ctx, FieldBootstrappable, ctx.lib.GetBootstrappable)
	if err != nil {
		return BootstrappableUnset, err
	}
	return NewBootstrappable(v), nil
}

// PhiM returns phi(M), the degree of the cyclotomic polynomial.
func (ctx *Context) PhiM() (uint64, error) {
	return read(ctx, FieldM, ctx.lib.GetPhiM)
}

// OrdP returns the order of P in Z_M^*.
func (ctx *Context) OrdP() (uint64, error) {
	return read(ctx, FieldP, ctx.lib.GetOrdP)
}

// NSlots returns the number of plaintext slots, phi(M)/OrdP.
func (ctx *Context) NSlots() (uint64, error) {
	return read(ctx, FieldUnknown, ctx.lib.GetNSlots)
}

// ModulusChain returns the ciphertext primes and the special primes.
func (ctx *Context) ModulusChain() (ctxt, special []uint64, err error) {
	if ctxt, err = read(ctx, FieldBits, ctx.lib.GetCtxtPrimes); err != nil {
		return nil, nil, err
	}
	if special, err = read(ctx, FieldC, ctx.lib.GetSpecialPrimes); err != nil {
		return nil, nil, err
	}
	return
}

// LogQ returns log2 of the product of the ciphertext primes.
func (ctx *Context) LogQ() (float64, error) {
	ctxt, _, err := ctx.ModulusChain()
	if err != nil {
		return 0, err
	}
	if len(ctxt) == 0 {
		return 0, nil
	}
	return bignum.Log2(bignum.Product(ctxt), logQPrec), nil
}

// SecurityLevel returns the estimated security of the context, in bits,
// as 7.2 * phi(M) / log2(Q) - 110.
func (ctx *Context) SecurityLevel() (float64, error) {

	phi, err := ctx.PhiM()
	if err != nil {
		return 0, err
	}

	logQ, err := ctx.LogQ()
	if err != nil {
		return 0, err
	}

	if logQ == 0 {
		return math.Inf(1), nil
	}

	return 7.2*float64(phi)/logQ - 110, nil
}

// Version returns the version of the library.
func (ctx *Context) Version() string {
	return ctx.lib.Version()
}

// Parameters reads back all the parameters of the context.
func (ctx *Context) Parameters() (params Parameters, err error) {

	if params.m, err = ctx.M(); err != nil {
		return
	}
	if params.p, err = ctx.P(); err != nil {
		return
	}
	if params.r, err = ctx.R(); err != nil {
		return
	}
	if params.bits, err = ctx.Bits(); err != nil {
		return
	}
	if params.c, err = ctx.C(); err != nil {
		return
	}
	if params.gens, err = ctx.Gens(); err != nil {
		return
	}
	if params.ords, err = ctx.Ords(); err != nil {
		return
	}
	if params.mvec, err = ctx.Mvec(); err != nil {
		return
	}
	if params.bootstrap, err = ctx.Bootstrap(); err != nil {
		return
	}
	if params.bootstrappable, err = ctx.Bootstrappable(); err != nil {
		return
	}

	return
}

// ChainSummary describes the bit-sizes of the primes of a modulus chain.
type ChainSummary struct {
	Count  int
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64
}

func summarize(primes []uint64) (s ChainSummary, err error) {

	if len(primes) == 0 {
		return
	}

	sizes := make(stats.Float64Data, len(primes))
	for i := range primes {
		sizes[i] = math.Log2(float64(primes[i]))
	}

	s.Count = len(sizes)

	if s.Min, err = sizes.Min(); err != nil {
		return
	}
	if s.Max, err = sizes.Max(); err != nil {
		return
	}
	if s.Mean, err = sizes.Mean(); err != nil {
		return
	}
	s.StdDev, err = sizes.StandardDeviation()

	return
}

// ChainSummary returns the summary of the ciphertext primes and of the
// special primes.
func (ctx *Context) ChainSummary() (ctxt, special ChainSummary, err error) {

	q, p, err := ctx.ModulusChain()
	if err != nil {
		return
	}

	if ctxt, err = summarize(q); err != nil {
		return ctxt, special, &ConstructionError{Kind: Native, Field: FieldBits, Err: err}
	}

	if special, err = summarize(p); err != nil {
		return ctxt, special, &ConstructionError{Kind: Native, Field: FieldC, Err: err}
	}

	return
}

// Fingerprint returns a digest of the parameters and of the modulus
// chain of the context. Two contexts built from the same parameters
// by the same library have the same fingerprint.
func (ctx *Context) Fingerprint() (digest [32]byte, err error) {

	params, err := ctx.Parameters()
	if err != nil {
		return
	}

	ctxt, special, err := ctx.ModulusChain()
	if err != nil {
		return
	}

	data, err := json.Marshal(params)
	if err != nil {
		return digest, &ConstructionError{Kind: Native, Err: err}
	}

	hasher := blake3.New()
	hasher.Write(data)

	buf := make([]byte, 8)
	for _, primes := range [][]uint64{ctxt, special} {
		binary.BigEndian.PutUint64(buf, uint64(len(primes)))
		hasher.Write(buf)
		for _, q := range primes {
			binary.BigEndian.PutUint64(buf, q)
			hasher.Write(buf)
		}
	}

	copy(digest[:], hasher.Sum(nil))

	return
}

// checkBootstrapChain checks that the bootstrapping data of a
// bootstrappable context was prepared for its modulus chain.
func (ctx *Context) checkBootstrapChain() error {

	enabled, err := read(ctx, FieldBootstrappable, ctx.lib.GetBootstrappable)
	if err != nil || !enabled {
		return err
	}

	have, err := read(ctx, FieldBits, ctx.lib.GetBits)
	if err != nil {
		return err
	}

	prepared, err := read(ctx, FieldBits, ctx.lib.GetBootstrapChainBits)
	if err != nil {
		return err
	}

	if have != prepared {
		return &ConstructionError{
			Kind:  Native,
			Field: FieldBootstrappable,
			Msg:   fmt.Sprintf("bootstrapping data prepared for a %d-bit modulus chain, context has %d bits", prepared, have),
		}
	}

	return nil
}

// String returns a human readable description of the context.
func (ctx *Context) String() string {

	params, err := ctx.Parameters()
	if err != nil {
		return fmt.Sprintf("Context{%s}", err)
	}

	var b strings.Builder

	fmt.Fprintf(&b, "Context{%s", params)

	if phi, err := ctx.PhiM(); err == nil {
		fmt.Fprintf(&b, " phi(m)=%d", phi)
	}

	if ordP, err := ctx.OrdP(); err == nil {
		fmt.Fprintf(&b, " ord(p)=%d", ordP)
	}

	if nslots, err := ctx.NSlots(); err == nil {
		fmt.Fprintf(&b, " nslots=%d", nslots)
	}

	if ctxt, special, err := ctx.ModulusChain(); err == nil {
		fmt.Fprintf(&b, " primes=%d+%d", len(ctxt), len(special))
	}

	if logQ, err := ctx.LogQ(); err == nil {
		fmt.Fprintf(&b, " logQ=%.2f", logQ)
	}

	fmt.Fprintf(&b, " version=%s}", ctx.Version())

	return b.String()
}
