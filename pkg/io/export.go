package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/turnoutpaths/pkg/errors"
	"github.com/matzehuels/turnoutpaths/pkg/paths"
)

// Write encodes lib in the given format. Source locations are not written.
// The output can be read back with [Read].
func Write(w io.Writer, lib *Library, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(jsonLibrary{Turnouts: lib.Turnouts}); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(tomlLibrary{Turnouts: lib.Turnouts}); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", format)
	}
	return nil
}

// Export writes lib to path in the format named by its extension.
func Export(lib *Library, path string) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(f, lib, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

type tableDoc struct {
	Title   string      `json:"title"`
	Table   paths.Table `json:"table"`
	Encoded []int8      `json:"encoded"`
}

// WriteTable writes a titled Path Table as JSON, with its encoded bytes as
// signed values.
func WriteTable(w io.Writer, title string, tbl paths.Table) error {
	buf, err := tbl.Encode()
	if err != nil {
		return err
	}
	doc := tableDoc{Title: title, Table: tbl, Encoded: make([]int8, len(buf))}
	for i, b := range buf {
		doc.Encoded[i] = int8(b)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
