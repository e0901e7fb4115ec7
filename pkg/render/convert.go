package render

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"strings"

	"github.com/matzehuels/turnoutpaths/pkg/errors"
)

// rsvg is the converter used for raster and print output.
var rsvg = "rsvg-convert"

// Convert turns an SVG diagram into pdf or png. Scale applies to png only;
// values <= 0 mean 1.
func Convert(ctx context.Context, svg []byte, format string, scale float64) ([]byte, error) {
	args := []string{"-f", format}
	switch format {
	case "pdf":
	case "png":
		if scale <= 0 {
			scale = 1
		}
		args = append(args, "-z", strconv.FormatFloat(scale, 'f', 2, 64))
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "cannot convert a diagram to %q", format)
	}

	bin, err := exec.LookPath(rsvg)
	if err != nil {
		return nil, errors.New(errors.ErrCodeUnsupported,
			"%s output needs %s (apt install librsvg2-bin, brew install librsvg)", format, rsvg)
	}

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdin = bytes.NewReader(svg)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "%s: %s", rsvg, strings.TrimSpace(stderr.String()))
	}
	return out.Bytes(), nil
}
