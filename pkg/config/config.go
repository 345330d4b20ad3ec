// Package config loads layout configuration files.
//
// A file is decoded over [layout.DefaultConfig], so it only needs to name
// the values it changes. The decoder is chosen by extension: .toml, .yaml or
// .yml, and .json. Keys use the same camelCase names in every format:
//
//	# layout.toml
//	repulsionStrength = 800.0
//	damping = 0.08
//	placement = "parent"
//
// Unknown keys are rejected so that a misspelt option does not silently fall
// back to its default.
package config

import (
	"bytes"
	"encoding/json"
	goerrors "errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/pmwhite/gexf-viewer/pkg/errors"
	"github.com/pmwhite/gexf-viewer/pkg/layout"
)

// Format names a configuration encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatOf infers the configuration format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported config file %q (expected .toml, .yaml or .json)", filepath.Base(path))
	}
}

// Load reads the configuration file at path. An empty path returns the
// defaults.
func Load(path string) (layout.Config, error) {
	if path == "" {
		return layout.DefaultConfig(), nil
	}
	format, err := FormatOf(path)
	if err != nil {
		return layout.Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if goerrors.Is(err, fs.ErrNotExist) {
			return layout.Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file not found: %s", path)
		}
		return layout.Config{}, errors.Wrap(errors.ErrCodeInternal, err, "read %s", path)
	}
	return Decode(data, format)
}

// Decode parses data over the defaults and validates the result.
func Decode(data []byte, format Format) (layout.Config, error) {
	cfg := layout.DefaultConfig()
	if err := decode(data, format, &cfg); err != nil {
		return layout.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return layout.Config{}, err
	}
	return cfg, nil
}

func decode(data []byte, format Format, cfg *layout.Config) error {
	switch format {
	case FormatTOML:
		md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(cfg)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse TOML")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "unknown option %q", undecoded[0].String())
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !goerrors.Is(err, io.EOF) {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse YAML")
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil && !goerrors.Is(err, io.EOF) {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse JSON")
		}
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unknown config format %q", format)
	}
	return nil
}
