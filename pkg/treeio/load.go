package treeio

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/vdiff/internal/errors"
	"github.com/vango-dev/vdiff/pkg/vdom"
)

// Load reads a tree from a file. The format comes from the extension.
func Load(path string) (*vdom.Node, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.New(errors.CodeUnreadableInput).Wrap(err)
	}
	defer file.Close()
	n, err := Decode(file, f)
	if err != nil {
		return nil, withFile(err, path)
	}
	return n, nil
}

// Decode reads a tree in the given format.
func Decode(r io.Reader, f Format) (*vdom.Node, error) {
	if f == FormatHTML {
		return ParseHTML(r)
	}
	doc, err := decodeDocument(r, f)
	if err != nil {
		return nil, err
	}
	return NodeFromDocument(doc)
}

// LoadSkip reads a skip tree from a JSON or YAML file.
func LoadSkip(path string) (*vdom.SkipDiff, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.New(errors.CodeUnreadableInput).Wrap(err)
	}
	defer file.Close()
	s, err := DecodeSkip(file, f)
	if err != nil {
		return nil, withFile(err, path)
	}
	return s, nil
}

// DecodeSkip reads a skip tree in the given format.
func DecodeSkip(r io.Reader, f Format) (*vdom.SkipDiff, error) {
	doc, err := decodeDocument(r, f)
	if err != nil {
		return nil, err
	}
	return SkipFromDocument(doc)
}

func decodeDocument(r io.Reader, f Format) (any, error) {
	var doc any
	switch f {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.UseNumber()
		if err := dec.Decode(&doc); err != nil {
			return nil, unreadable(err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
			return nil, unreadable(err)
		}
	default:
		return nil, errors.New(errors.CodeUnsupportedInput).
			WithDetailf("cannot read %s documents here", f)
	}
	return doc, nil
}

func unreadable(err error) *errors.Error {
	if stderrors.Is(err, io.EOF) {
		return errors.New(errors.CodeUnreadableInput).WithDetail("empty document")
	}
	return errors.New(errors.CodeUnreadableInput).Wrap(err)
}

func withFile(err error, path string) error {
	e := errors.FromError(err, errors.CodeUnreadableInput)
	if e.Detail == "" {
		e.WithDetail(path)
	} else {
		e.WithDetailf("%s: %s", path, e.Detail)
	}
	return e
}

// Encode writes a tree as an indented JSON or YAML document.
func Encode(w io.Writer, n *vdom.Node, f Format) error {
	return encodeDocument(w, Document(n), f)
}

// EncodePatches writes a patch script as an indented JSON or YAML list.
func EncodePatches(w io.Writer, patches []vdom.Patch, f Format) error {
	return encodeDocument(w, PatchDocuments(patches), f)
}

// EncodeSkip writes a skip tree as an indented JSON or YAML document.
func EncodeSkip(w io.Writer, s *vdom.SkipDiff, f Format) error {
	return encodeDocument(w, SkipDocument(s), f)
}

func encodeDocument(w io.Writer, doc any, f Format) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	}
	return errors.New(errors.CodeUnsupportedInput).
		WithDetailf("cannot write %s documents", f).
		WithSuggestion("Use the render command for HTML output")
}

// DecodePatches reads a patch script written by EncodePatches.
func DecodePatches(r io.Reader, f Format) ([]vdom.Patch, error) {
	var docs []PatchDocument
	switch f {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.UseNumber()
		if err := dec.Decode(&docs); err != nil {
			return nil, unreadable(err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&docs); err != nil {
			return nil, unreadable(err)
		}
	default:
		return nil, errors.New(errors.CodeUnsupportedInput).
			WithDetailf("cannot read patches from %s", f)
	}
	return PatchesFromDocuments(docs)
}
