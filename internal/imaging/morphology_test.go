package imaging

import (
	"math"
	"testing"
)

func TestErodeDilate(t *testing.T) {
	dot := NewBuffer(7, 7, 1)
	dot.Set(3, 3, 0, 255)

	if n := countNonZero(erode(dot, 1)); n != 0 {
		t.Errorf("erode: single pixel should vanish, %d left", n)
	}

	grown := dilate(dot, 1)
	if n := countNonZero(grown); n != 9 {
		t.Errorf("dilate: got %d pixels, want 9", n)
	}
	if n := countNonZero(dilate(dot, 2)); n != 25 {
		t.Errorf("dilate x2: got %d pixels, want 25", n)
	}
	if grown.At(2, 2, 0) != 255 || grown.At(1, 1, 0) != 0 {
		t.Error("dilate: unexpected footprint")
	}
}

func TestErode_BordersIgnored(t *testing.T) {
	full := NewBuffer(5, 4, 1)
	for i := range full.Pix {
		full.Pix[i] = 255
	}

	if n := countNonZero(erode(full, 3)); n != 20 {
		t.Errorf("erode: got %d pixels, want all 20", n)
	}
}

func TestMorphOpen_RemovesSpecks(t *testing.T) {
	b := NewBuffer(12, 12, 1)
	for y := 2; y < 9; y++ {
		for x := 2; x < 9; x++ {
			b.Set(x, y, 0, 255)
		}
	}
	b.Set(11, 0, 0, 255) // speck

	opened := morphOpen(b, 1)
	if opened.At(11, 0, 0) != 0 {
		t.Error("speck survived opening")
	}
	if opened.At(5, 5, 0) != 255 {
		t.Error("square interior removed by opening")
	}
}

func TestDistanceTransform(t *testing.T) {
	b := NewBuffer(7, 7, 1)
	for i := range b.Pix {
		b.Pix[i] = 255
	}
	b.Set(3, 3, 0, 0)

	dist := distanceTransform(b)

	tests := []struct {
		x, y int
		want float64
	}{
		{3, 3, 0},
		{4, 3, chamferA},
		{3, 1, 2 * chamferA},
		{4, 4, chamferB},
		{5, 4, chamferC},
		{5, 5, 2 * chamferB},
	}
	for _, tt := range tests {
		if got := dist[tt.y*7+tt.x]; math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("dist(%d,%d): got %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestDistanceTransform_NoZero(t *testing.T) {
	b := NewBuffer(4, 4, 1)
	for i := range b.Pix {
		b.Pix[i] = 1
	}

	for i, d := range distanceTransform(b) {
		if d != 0 {
			t.Fatalf("dist[%d]: got %v, want 0", i, d)
		}
	}
}

func TestNormalizeMinMax(t *testing.T) {
	v := []float64{2, 4, 6}
	normalizeMinMax(v)
	if v[0] != 0 || v[1] != 0.5 || v[2] != 1 {
		t.Errorf("got %v, want [0 0.5 1]", v)
	}

	constant := []float64{3, 3}
	normalizeMinMax(constant)
	if constant[0] != 0 || constant[1] != 0 {
		t.Errorf("constant input: got %v, want zeros", constant)
	}
}

func TestLabelComponents(t *testing.T) {
	b := NewBuffer(6, 4, 1)
	// Two blobs; the second touches diagonally and is one component
	b.Set(0, 0, 0, 1)
	b.Set(1, 0, 0, 1)
	b.Set(4, 1, 0, 9)
	b.Set(5, 2, 0, 9)

	labels, n := labelComponents(b)

	if n != 2 {
		t.Fatalf("components: got %d, want 2", n)
	}
	if labels[0] != 1 || labels[1] != 1 {
		t.Errorf("first blob: got %d,%d, want 1,1", labels[0], labels[1])
	}
	if labels[1*6+4] != 2 || labels[2*6+5] != 2 {
		t.Errorf("diagonal blob: got %d,%d, want 2,2", labels[1*6+4], labels[2*6+5])
	}
	if labels[3*6] != 0 {
		t.Errorf("background: got %d, want 0", labels[3*6])
	}
}
