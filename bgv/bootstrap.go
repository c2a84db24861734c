package bgv

import (
	"fmt"
	"strings"
)

// Bootstrap is the bootstrapping mode of the context.
type Bootstrap uint8

const (
	BootstrapNone = Bootstrap(iota)
	BootstrapThin
	BootstrapThick
)

var bootstrapNames = [...]string{"none", "thin", "thick"}

// NewBootstrap returns the bootstrapping mode named mode.
func NewBootstrap(mode string) (Bootstrap, error) {
	return ParseBootstrap(mode)
}

// ParseBootstrap parses "none", "thin" or "thick" (case-insensitive).
func ParseBootstrap(s string) (Bootstrap, error) {
	for i, name := range bootstrapNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return Bootstrap(i), nil
		}
	}
	return BootstrapNone, newParameterError(FieldBootstrap, s, ErrUnknownMode)
}

func (b Bootstrap) String() string {
	if int(b) < len(bootstrapNames) {
		return bootstrapNames[b]
	}
	return fmt.Sprintf("Bootstrap(%d)", uint8(b))
}

// Enabled returns true if the mode is thin or thick.
func (b Bootstrap) Enabled() bool {
	return b == BootstrapThin || b == BootstrapThick
}

func (b Bootstrap) Equal(other Bootstrap) bool { return b == other }
func (b Bootstrap) Field() Field               { return FieldBootstrap }

func (b Bootstrap) validate() error {
	if int(b) >= len(bootstrapNames) {
		return newParameterError(FieldBootstrap, b, ErrUnknownMode)
	}
	return nil
}

func (b Bootstrap) MarshalText() ([]byte, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}
	return []byte(b.String()), nil
}

func (b *Bootstrap) UnmarshalText(text []byte) (err error) {
	*b, err = ParseBootstrap(string(text))
	return
}

// Bootstrappable states whether the context must be prepared for
// bootstrapping. BootstrappableUnset leaves the library default.
type Bootstrappable uint8

const (
	BootstrappableUnset = Bootstrappable(iota)
	BootstrappableEnabled
	BootstrappableDisabled
)

var bootstrappableNames = [...]string{"unset", "enabled", "disabled"}

// ParseBootstrappable parses "unset", "enabled" or "disabled"
// (case-insensitive). "true" and "false" are accepted as aliases of
// "enabled" and "disabled".
func ParseBootstrappable(s string) (Bootstrappable, error) {

	s = strings.ToLower(strings.TrimSpace(s))

	switch s {
	case "true":
		return BootstrappableEnabled, nil
	case "false":
		return BootstrappableDisabled, nil
	}

	for i, name := range bootstrappableNames {
		if s == name {
			return Bootstrappable(i), nil
		}
	}

	return BootstrappableUnset, newParameterError(FieldBootstrappable, s, ErrUnknownMode)
}

// NewBootstrappable returns BootstrappableEnabled if enabled is true and
// BootstrappableDisabled otherwise.
func NewBootstrappable(enabled bool) Bootstrappable {
	if enabled {
		return BootstrappableEnabled
	}
	return BootstrappableDisabled
}

func (b Bootstrappable) String() string {
	if int(b) < len(bootstrappableNames) {
		return bootstrappableNames[b]
	}
	return fmt.Sprintf("Bootstrappable(%d)", uint8(b))
}

func (b Bootstrappable) Equal(other Bootstrappable) bool { return b == other }
func (b Bootstrappable) Field() Field                    { return FieldBootstrappable }

func (b Bootstrappable) validate() error {
	if int(b) >= len(bootstrappableNames) {
		return newParameterError(FieldBootstrappable, b, ErrUnknownMode)
	}
	return nil
}

func (b Bootstrappable) MarshalText() ([]byte, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}
	return []byte(b.String()), nil
}

func (b *Bootstrappable) UnmarshalText(text []byte) (err error) {
	*b, err = ParseBootstrappable(string(text))
	return
}
