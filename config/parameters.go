package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Pro7ech/hebind/bgv"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of a parameter file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatOf returns the Format of a parameter file from its extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported parameter file extension %q", filepath.Ext(path))
	}
}

// DecodeParameters decodes literal parameters from r. Unknown keys are rejected.
func DecodeParameters(r io.Reader, format Format) (pl bgv.ParametersLiteral, err error) {

	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		err = dec.Decode(&pl)
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		err = dec.Decode(&pl)
	default:
		return pl, fmt.Errorf("unsupported parameter format %q", format)
	}

	// an empty document is an empty literal
	if errors.Is(err, io.EOF) {
		err = nil
	}

	if err != nil {
		return pl, fmt.Errorf("cannot decode %s parameters: %w", format, err)
	}

	return
}

// LoadParameters reads and validates the parameters of the file at path.
func LoadParameters(path string) (params bgv.Parameters, err error) {

	format, err := FormatOf(path)
	if err != nil {
		return
	}

	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	pl, err := DecodeParameters(f, format)
	if err != nil {
		return params, fmt.Errorf("%s: %w", path, err)
	}

	if params, err = bgv.NewParametersFromLiteral(pl); err != nil {
		return params, fmt.Errorf("%s: %w", path, err)
	}

	return
}
