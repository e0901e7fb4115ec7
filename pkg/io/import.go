package io

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/turnoutpaths/pkg/errors"
	"github.com/matzehuels/turnoutpaths/pkg/turnout"
)

// Format names a library file format.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// FormatOf returns the format implied by name's extension.
func FormatOf(name string) (Format, error) {
	if err := errors.ValidateDefinitionFilename(name); err != nil {
		return "", err
	}
	return Format(strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))), nil
}

// Library is an ordered list of turnout definitions.
type Library struct {
	Turnouts []turnout.Definition
}

// Find returns the definition with the given title.
func (l *Library) Find(title string) (turnout.Definition, error) {
	for _, d := range l.Turnouts {
		if d.Title == title {
			return d, nil
		}
	}
	return turnout.Definition{}, errors.New(errors.ErrCodeTurnoutNotFound, "turnout %q not found", title)
}

// Titles returns the titles in library order.
func (l *Library) Titles() []string {
	out := make([]string, len(l.Turnouts))
	for i, d := range l.Turnouts {
		out[i] = d.Title
	}
	return out
}

type jsonLibrary struct {
	Turnouts []turnout.Definition `json:"turnouts"`
}

type tomlLibrary struct {
	Turnouts []turnout.Definition `toml:"turnout"`
}

// Read decodes a library in the given format. name is recorded as the
// source file of every definition.
//
// Read returns an error if the data is malformed, contains unknown fields,
// a definition fails validation, or two definitions share a title.
func Read(r io.Reader, format Format, name string) (*Library, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read %s", name)
	}

	var (
		defs  []turnout.Definition
		lines []int
	)
	switch format {
	case FormatJSON:
		defs, lines, err = decodeJSON(data)
	case FormatTOML:
		defs, lines, err = decodeTOML(data)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", format)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s", name)
	}

	seen := make(map[string]int, len(defs))
	for i := range defs {
		d := &defs[i]
		d.Source = turnout.Source{File: name, Line: lines[i]}
		if err := d.Validate(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDefinition, err, "%s: turnout %d", d.Source, i)
		}
		if prev, ok := seen[d.Title]; ok {
			return nil, errors.New(errors.ErrCodeInvalidDefinition,
				"%s: duplicate turnout %q (first defined at line %d)", d.Source, d.Title, prev)
		}
		seen[d.Title] = d.Source.Line
	}
	return &Library{Turnouts: defs}, nil
}

// Import reads the library file at path; the format follows the extension.
func Import(path string) (*Library, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	defer f.Close()
	return Read(f, format, filepath.Base(path))
}

// decodeJSON walks the top-level object so the offset of every element of
// the turnouts array is known.
func decodeJSON(data []byte) ([]turnout.Definition, []int, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	if err := expectDelim(dec, '{'); err != nil {
		return nil, nil, err
	}
	var (
		defs  []turnout.Definition
		lines []int
	)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, _ := tok.(string)
		if key != "turnouts" {
			return nil, nil, fmt.Errorf("unknown field %q", key)
		}
		if err := expectDelim(dec, '['); err != nil {
			return nil, nil, err
		}
		for dec.More() {
			line := lineAt(data, int(dec.InputOffset()))
			var d turnout.Definition
			if err := dec.Decode(&d); err != nil {
				return nil, nil, fmt.Errorf("line %d: %w", line, err)
			}
			defs = append(defs, d)
			lines = append(lines, line)
		}
		if err := expectDelim(dec, ']'); err != nil {
			return nil, nil, err
		}
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, nil, err
	}
	return defs, lines, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

// lineAt returns the 1-based line of the first token at or after off.
func lineAt(data []byte, off int) int {
	for off < len(data) && strings.IndexByte(" \t\r\n,", data[off]) >= 0 {
		off++
	}
	return 1 + bytes.Count(data[:off], []byte{'\n'})
}

var turnoutHeader = regexp.MustCompile(`^\s*\[\[\s*turnout\s*\]\]`)

func decodeTOML(data []byte) ([]turnout.Definition, []int, error) {
	var lib tomlLibrary
	md, err := toml.Decode(string(data), &lib)
	if err != nil {
		return nil, nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, nil, fmt.Errorf("unknown field %q", undecoded[0].String())
	}

	lines := make([]int, len(lib.Turnouts))
	sc := bufio.NewScanner(bytes.NewReader(data))
	for n, i := 1, 0; sc.Scan() && i < len(lines); n++ {
		if turnoutHeader.MatchString(sc.Text()) {
			lines[i] = n
			i++
		}
	}
	return lib.Turnouts, lines, nil
}
