package render

import (
	"context"
	"testing"

	"github.com/pmwhite/gexf-viewer/pkg/errors"
)

const tinySVG = `<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10"><rect width="10" height="10"/></svg>`

func TestConvertWithoutRsvg(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	if Available() {
		t.Fatal("Available() = true with empty PATH")
	}
	if _, err := ToPDF(context.Background(), []byte(tinySVG)); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("ToPDF() = %v, want UNSUPPORTED", err)
	}
	if _, err := ToPNG(context.Background(), []byte(tinySVG), 2); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("ToPNG() = %v, want UNSUPPORTED", err)
	}
}

func TestToPNG(t *testing.T) {
	if !Available() {
		t.Skip("rsvg-convert not installed")
	}
	png, err := ToPNG(context.Background(), []byte(tinySVG), 1)
	if err != nil {
		t.Fatalf("ToPNG: %v", err)
	}
	if len(png) < 8 || string(png[1:4]) != "PNG" {
		t.Errorf("output is not a PNG: % x", png[:min(len(png), 8)])
	}
}
