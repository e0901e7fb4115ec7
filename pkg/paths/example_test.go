package paths_test

import (
	"fmt"

	"github.com/matzehuels/turnoutpaths/pkg/geom"
	"github.com/matzehuels/turnoutpaths/pkg/paths"
)

func ExampleGenerate() {
	// A right-hand turnout: common rail, through rail and diverging curve.
	diverging := geom.Curve(geom.Point{X: 10, Y: -50}, 50, 0, 15)
	dPos, dAng := diverging.End(1)

	res := paths.Generate(paths.Input{
		Segments: []geom.Segment{
			geom.Straight(geom.Point{X: 0, Y: 0}, geom.Point{X: 10, Y: 0}),
			geom.Straight(geom.Point{X: 10, Y: 0}, geom.Point{X: 20, Y: 0}),
			diverging,
		},
		Endpoints: []geom.Endpoint{
			{Pos: geom.Point{X: 0, Y: 0}, Angle: 270},
			{Pos: geom.Point{X: 20, Y: 0}, Angle: 90},
			{Pos: dPos, Angle: dAng},
		},
	}, paths.DefaultOptions())

	fmt.Println("Routes:", len(res.SubPaths))
	fmt.Print(res.Table)
	// Output:
	// Routes: 2
	// P "P0" 1 2
	// P "P1" 1 3
}

func ExampleDecode() {
	buf := []byte{'P', '0', 0, 1, 0xFE, 0, 3, 0, 0, 0}
	t, err := paths.Decode(buf)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(t.Groups[0].Label, t.Groups[0].SubPaths)
	// Output:
	// P0 [[1 -2] [3]]
}
