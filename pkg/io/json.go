package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pmwhite/gexf-viewer/pkg/errors"
	"github.com/pmwhite/gexf-viewer/pkg/layout"
)

// ReadJSON decodes a JSON graph from r.
//
// The input must be an object with "nodes" and "edges" arrays. Each node
// needs an integer "id" and may carry a "label"; each edge needs integer
// "source" and "target" fields. ReadJSON does not close r.
func ReadJSON(r io.Reader) (Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Document{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode JSON")
	}
	return doc, nil
}

// WriteJSON encodes doc in the format accepted by [ReadJSON].
func WriteJSON(doc Document, w io.Writer) error {
	return encode(w, doc)
}

// WriteSnapshot encodes s as indented JSON.
func WriteSnapshot(s layout.Snapshot, w io.Writer) error {
	return encode(w, s)
}

// ReadSnapshot decodes a snapshot written by [WriteSnapshot].
func ReadSnapshot(r io.Reader) (layout.Snapshot, error) {
	var s layout.Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return layout.Snapshot{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode snapshot")
	}
	return s, nil
}

// ExportSnapshot writes s to a JSON file at path.
func ExportSnapshot(s layout.Snapshot, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteSnapshot(s, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
