package io

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/matzehuels/turnoutpaths/pkg/errors"
	"github.com/matzehuels/turnoutpaths/pkg/geom"
	"github.com/matzehuels/turnoutpaths/pkg/paths"
	"github.com/matzehuels/turnoutpaths/pkg/turnout"
)

const tomlLib = `# test library

[[turnout]]
title = "Straight 10"

[[turnout.segments]]
kind = "straight"
track = true
pos = [{ x = 0.0, y = 0.0 }, { x = 10.0, y = 0.0 }]

[[turnout.endpoints]]
pos = { x = 0.0, y = 0.0 }
angle = 270.0

[[turnout.endpoints]]
pos = { x = 10.0, y = 0.0 }
angle = 90.0

[[turnout.paths.groups]]
label = "P0"
subpaths = [[1]]

[[turnout]]
title = "Buffer"
path_no_combine = true

[[turnout.segments]]
kind = "straight"
track = true
pos = [{ x = 0.0, y = 0.0 }, { x = 5.0, y = 0.0 }]
`

const jsonLib = `{
  "turnouts": [
    {
      "title": "Straight 10",
      "segments": [
        {"kind": "straight", "track": true, "pos": [{"x": 0, "y": 0}, {"x": 10, "y": 0}]}
      ],
      "endpoints": [
        {"pos": {"x": 0, "y": 0}, "angle": 270},
        {"pos": {"x": 10, "y": 0}, "angle": 90}
      ],
      "paths": {"groups": [{"label": "P0", "subpaths": [[1]]}]}
    },
    {
      "title": "Buffer",
      "path_no_combine": true,
      "segments": [
        {"kind": "straight", "track": true, "pos": [{"x": 0, "y": 0}, {"x": 5, "y": 0}]}
      ]
    }
  ]
}
`

func checkLibrary(t *testing.T, lib *Library, file string, lines []int) {
	t.Helper()
	if diff := cmp.Diff([]string{"Straight 10", "Buffer"}, lib.Titles()); diff != "" {
		t.Fatalf("Titles() mismatch (-want +got):\n%s", diff)
	}
	for i, want := range lines {
		src := lib.Turnouts[i].Source
		if src.File != file || src.Line != want {
			t.Errorf("turnout %d source = %s, want %s:%d", i, src, file, want)
		}
	}

	d, err := lib.Find("Straight 10")
	if err != nil {
		t.Fatalf("Find() error: %v", err)
	}
	if len(d.Endpoints) != 2 || d.Segments[0].Pos[1].X != 10 {
		t.Errorf("geometry = %+v", d)
	}
	wantPaths := &paths.Table{Groups: []paths.TableGroup{{Label: "P0", SubPaths: [][]int{{1}}}}}
	if diff := cmp.Diff(wantPaths, d.Paths); diff != "" {
		t.Errorf("saved paths mismatch (-want +got):\n%s", diff)
	}

	b, _ := lib.Find("Buffer")
	if !b.PathNoCombine || b.Paths != nil {
		t.Errorf("Buffer = %+v, want no-combine without saved paths", b)
	}
}

func TestReadTOML(t *testing.T) {
	lib, err := Read(strings.NewReader(tomlLib), FormatTOML, "lib.toml")
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	checkLibrary(t, lib, "lib.toml", []int{3, 23})
}

func TestReadJSON(t *testing.T) {
	lib, err := Read(strings.NewReader(jsonLib), FormatJSON, "lib.json")
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	checkLibrary(t, lib, "lib.json", []int{3, 14})
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		data   string
	}{
		{"toml syntax", FormatTOML, "[[turnout]\n"},
		{"toml unknown field", FormatTOML, "[[turnout]]\ntitle = \"a\"\ncolour = \"red\"\n"},
		{"toml missing title", FormatTOML, "[[turnout]]\npath_override = true\n"},
		{"toml bad segment", FormatTOML, "[[turnout]]\ntitle = \"a\"\n[[turnout.segments]]\nkind = \"spiral\"\n"},
		{"toml duplicate", FormatTOML, "[[turnout]]\ntitle = \"a\"\n[[turnout]]\ntitle = \"a\"\n"},
		{"json syntax", FormatJSON, `{"turnouts": [`},
		{"json not object", FormatJSON, `[]`},
		{"json unknown top level", FormatJSON, `{"layouts": []}`},
		{"json unknown field", FormatJSON, `{"turnouts": [{"title": "a", "colour": "red"}]}`},
		{"json bad segment", FormatJSON, `{"turnouts": [{"title": "a", "segments": [{"kind": "straight"}]}]}`},
		{"unknown format", Format("yaml"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Read(strings.NewReader(tt.data), tt.format, "x"); err == nil {
				t.Error("Read() error = nil")
			}
		})
	}
}

func TestReadDuplicateNamesFirstLine(t *testing.T) {
	_, err := Read(strings.NewReader("[[turnout]]\ntitle = \"a\"\n\n[[turnout]]\ntitle = \"a\"\n"), FormatTOML, "dup.toml")
	if !errors.Is(err, errors.ErrCodeInvalidDefinition) {
		t.Fatalf("Read() error = %v, want %s", err, errors.ErrCodeInvalidDefinition)
	}
	if msg := err.Error(); !strings.Contains(msg, "dup.toml:4") || !strings.Contains(msg, "line 1") {
		t.Errorf("error %q should name both definitions", msg)
	}
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		name    string
		want    Format
		wantErr bool
	}{
		{"lib.toml", FormatTOML, false},
		{"LIB.JSON", FormatJSON, false},
		{"dir/lib.json", FormatJSON, false},
		{"lib.xtp", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatOf(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FormatOf(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("FormatOf(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestExportImport(t *testing.T) {
	src, err := Read(strings.NewReader(tomlLib), FormatTOML, "lib.toml")
	if err != nil {
		t.Fatal(err)
	}
	curve := geom.Curve(geom.Point{X: 10, Y: -50}, 50, 0, 15)
	src.Turnouts = append(src.Turnouts, turnout.Definition{
		Title:     "Curve",
		Placement: geom.Placement{Origin: geom.Point{X: 3, Y: 4}, Angle: 90},
		Segments:  []geom.Segment{curve},
	})

	ignoreSource := cmpopts.IgnoreFields(turnout.Definition{}, "Source")
	for _, name := range []string{"out.toml", "out.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			if err := Export(src, path); err != nil {
				t.Fatalf("Export() error: %v", err)
			}
			got, err := Import(path)
			if err != nil {
				t.Fatalf("Import() error: %v", err)
			}
			if diff := cmp.Diff(src.Turnouts, got.Turnouts, ignoreSource, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
			if got.Turnouts[0].Source.File != name {
				t.Errorf("Source.File = %q, want %q", got.Turnouts[0].Source.File, name)
			}
		})
	}
}

func TestImportMissing(t *testing.T) {
	_, err := Import(filepath.Join(t.TempDir(), "none.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Import() error = %v, want %s", err, errors.ErrCodeFileNotFound)
	}
	if _, err := Import("lib.txt"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Import(lib.txt) error = %v, want %s", err, errors.ErrCodeInvalidFormat)
	}
}

func TestFindMissing(t *testing.T) {
	lib := &Library{}
	if _, err := lib.Find("x"); !errors.Is(err, errors.ErrCodeTurnoutNotFound) {
		t.Errorf("Find() error = %v, want %s", err, errors.ErrCodeTurnoutNotFound)
	}
}

func TestWriteTable(t *testing.T) {
	tbl := paths.Table{Groups: []paths.TableGroup{{Label: "P0", SubPaths: [][]int{{1, -2}}}}}
	var buf bytes.Buffer
	if err := WriteTable(&buf, "wye", tbl); err != nil {
		t.Fatalf("WriteTable() error: %v", err)
	}
	var doc struct {
		Title   string `json:"title"`
		Encoded []int  `json:"encoded"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatal(err)
	}
	want := []int{'P', '0', 0, 1, -2, 0, 0, 0}
	if doc.Title != "wye" || !cmp.Equal(want, doc.Encoded) {
		t.Errorf("WriteTable() = %s", buf.String())
	}

	bad := paths.Table{Groups: []paths.TableGroup{{Label: "P0", SubPaths: [][]int{{200}}}}}
	if err := WriteTable(&buf, "bad", bad); err == nil {
		t.Error("WriteTable() with value 200 error = nil")
	}
}

func TestExportBadExtension(t *testing.T) {
	dir := t.TempDir()
	if err := Export(&Library{}, filepath.Join(dir, "lib.yaml")); err == nil {
		t.Error("Export(.yaml) error = nil")
	}
	if _, err := os.Stat(filepath.Join(dir, "lib.yaml")); !os.IsNotExist(err) {
		t.Error("Export(.yaml) created a file")
	}
}
