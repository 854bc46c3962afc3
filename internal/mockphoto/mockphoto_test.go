package mockphoto

import (
	"os"
	"testing"

	"github.com/disintegration/imaging"
)

func TestGradient(t *testing.T) {
	img := Gradient(100, 150)
	if b := img.Bounds(); b.Dx() != 100 || b.Dy() != 150 {
		t.Fatalf("unexpected bounds %v", b)
	}

	top := img.NRGBAAt(0, 0)
	if top.R != 240 || top.G != 220 || top.B != 210 {
		t.Errorf("unexpected top-left pixel %+v", top)
	}
	bottom := img.NRGBAAt(0, 149)
	if bottom.B >= top.B {
		t.Errorf("expected gradient to darken downwards, top %+v bottom %+v", top, bottom)
	}
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	paths, err := Generate(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected two files, got %v", paths)
	}
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || info.Size() == 0 {
			t.Errorf("expected non-empty %s: %v", p, err)
		}
	}

	img, err := imaging.Open(paths[0])
	if err != nil {
		t.Fatalf("failed to decode jpeg: %v", err)
	}
	if b := img.Bounds(); b.Dx() != Width || b.Dy() != Height {
		t.Errorf("unexpected size %v", b)
	}
}
