package treeio

import (
	"path/filepath"
	"strings"

	"github.com/vango-dev/vdiff/internal/errors"
)

// Format is an input document format.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
	FormatHTML
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	case FormatHTML:
		return "html"
	default:
		return "unknown"
	}
}

// ParseFormat returns the format with the given name. "yml" and "htm" are
// accepted as aliases.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "html", "htm":
		return FormatHTML, nil
	}
	return 0, errors.New(errors.CodeUnsupportedInput).
		WithDetailf("format %q is not one of json, yaml, html", name)
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return 0, errors.New(errors.CodeUnsupportedInput).
			WithDetailf("%s has no extension", path)
	}
	return ParseFormat(ext)
}
