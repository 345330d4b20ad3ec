package io

import (
	"bytes"
	goerrors "errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pmwhite/gexf-viewer/pkg/errors"
	"github.com/pmwhite/gexf-viewer/pkg/graph"
)

// Document is a decoded graph description.
type Document struct {
	Nodes []graph.NodeDescriptor `json:"nodes"`
	Edges []graph.EdgeDescriptor `json:"edges"`
}

// Format names an input encoding.
type Format string

const (
	FormatGEXF Format = "gexf"
	FormatJSON Format = "json"
)

// FormatOf infers the input format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gexf", ".xml":
		return FormatGEXF, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported input %q (expected .gexf, .xml or .json)", filepath.Base(path))
	}
}

// Read decodes r in the given format.
func Read(r io.Reader, format Format) (Document, error) {
	switch format {
	case FormatGEXF:
		return ReadGEXF(r)
	case FormatJSON:
		return ReadJSON(r)
	default:
		return Document{}, errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", format)
	}
}

// Import reads the graph description at path.
//
// A missing file is reported as FILE_NOT_FOUND and an unrecognised
// extension as INVALID_FORMAT. The whole file is read before decoding so
// the file is never held open across a slow decode.
func Import(path string) (Document, error) {
	format, err := FormatOf(path)
	if err != nil {
		return Document{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if goerrors.Is(err, fs.ErrNotExist) {
			return Document{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "input file not found: %s", path)
		}
		return Document{}, errors.Wrap(errors.ErrCodeInternal, err, "read %s", path)
	}
	doc, err := Read(bytes.NewReader(data), format)
	if err != nil {
		code := errors.GetCode(err)
		if code == "" {
			code = errors.ErrCodeInvalidInput
		}
		return Document{}, errors.Wrap(code, err, "import %s", filepath.Base(path))
	}
	return doc, nil
}
