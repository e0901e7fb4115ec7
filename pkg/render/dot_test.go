package render

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/turnoutpaths/pkg/errors"
	"github.com/matzehuels/turnoutpaths/pkg/geom"
	"github.com/matzehuels/turnoutpaths/pkg/paths"
)

func generate(in paths.Input) *paths.Result {
	opts := paths.DefaultOptions()
	opts.Logger = log.New(io.Discard)
	return paths.Generate(in, opts)
}

func wye() *paths.Result {
	curve := geom.Curve(geom.Point{X: 10, Y: -50}, 50, 0, 15)
	cPos, cAng := curve.End(1)
	return generate(paths.Input{
		Title: "wye",
		Segments: []geom.Segment{
			geom.Straight(geom.Point{X: 0, Y: 0}, geom.Point{X: 10, Y: 0}),
			geom.Straight(geom.Point{X: 10, Y: 0}, geom.Point{X: 20, Y: 0}),
			curve,
			{Kind: geom.KindStraight, Pos: []geom.Point{{X: 0, Y: 1}, {X: 20, Y: 1}}},
		},
		Endpoints: []geom.Endpoint{
			{Pos: geom.Point{X: 0, Y: 0}, Angle: 270},
			{Pos: geom.Point{X: 20, Y: 0}, Angle: 90},
			{Pos: cPos, Angle: cAng},
		},
	})
}

func TestToDOT_Basic(t *testing.T) {
	dot := ToDOT(wye(), Options{Title: "wye", Group: NoGroup})

	for _, want := range []string{
		"graph turnout {",
		`label="wye";`,
		`s0 [label="S0", shape=box];`,
		`s2 [label="S2", shape=box];`,
		`e2 [label="E2", shape=circle];`,
		"s0 -- s1;",
		"s0 -- s2;",
		"e0 -- s0;",
		"e1 -- s1;",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() output missing %q:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "s3") {
		t.Error("ToDOT() drew a decorative segment")
	}
	if strings.Contains(dot, "penwidth") {
		t.Error("ToDOT() highlighted without a group")
	}
}

func TestToDOT_Highlight(t *testing.T) {
	dot := ToDOT(wye(), Options{Group: 0})

	for _, want := range []string{
		`s1 [label="S1", shape=box, fillcolor="#d1495b", fontcolor=white];`,
		`s0 -- s1 [color="#d1495b", penwidth=3];`,
		`e0 -- s0 [color="#d1495b", penwidth=3];`,
		`s2 [label="S2", shape=box];`,
		"s0 -- s2;",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() output missing %q:\n%s", want, dot)
		}
	}
}

func TestToDOT_Bumper(t *testing.T) {
	res := generate(paths.Input{
		Segments:  []geom.Segment{geom.Straight(geom.Point{X: 0, Y: 0}, geom.Point{X: 10, Y: 0})},
		Endpoints: []geom.Endpoint{{Pos: geom.Point{X: 0, Y: 0}, Angle: 270}},
	})
	dot := ToDOT(res, Options{Group: NoGroup, Detailed: true})

	for _, want := range []string{
		`e1 [label="B1", shape=square];`,
		`e1 -- s0 [headlabel="1"];`,
		`e0 -- s0 [headlabel="0"];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() output missing %q:\n%s", want, dot)
		}
	}
}

func TestToDOT_GroupOutOfRange(t *testing.T) {
	if dot := ToDOT(wye(), Options{Group: 7}); strings.Contains(dot, "penwidth") {
		t.Error("ToDOT() highlighted a missing group")
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(wye(), Options{Group: 1}))
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("RenderSVG() output is not SVG")
	}
}

func TestRenderSVG_BadDOT(t *testing.T) {
	if _, err := RenderSVG(context.Background(), "graph {"); err == nil {
		t.Error("RenderSVG() error = nil for malformed DOT")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="62pt" height="44pt" viewBox="0.00 0.00 62.00 44.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	got := string(normalizeViewBox(in))
	if !strings.Contains(got, `viewBox="0 0 62.00 44.00" width="62" height="44"`) {
		t.Errorf("normalizeViewBox() = %s", got)
	}
	if plain := []byte("<svg><g/></svg>"); string(normalizeViewBox(plain)) != string(plain) {
		t.Error("normalizeViewBox() changed an svg without viewBox")
	}
}

func TestConvertErrors(t *testing.T) {
	ctx := context.Background()
	if _, err := Convert(ctx, nil, "gif", 1); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("Convert(gif) error = %v, want %s", err, errors.ErrCodeUnsupported)
	}

	defer func(old string) { rsvg = old }(rsvg)
	rsvg = "turnoutpaths-no-such-converter"
	if _, err := Convert(ctx, []byte("<svg/>"), "pdf", 0); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("Convert() without converter error = %v, want %s", err, errors.ErrCodeUnsupported)
	}
}
