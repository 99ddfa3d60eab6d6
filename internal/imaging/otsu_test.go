package imaging

import "testing"

func TestOtsuLevel(t *testing.T) {
	tests := []struct {
		name string
		lo   uint8
		hi   uint8
		want uint8
	}{
		{"bimodal", 50, 200, 51},
		{"black and white", 0, 255, 1},
		{"adjacent levels", 127, 128, 128},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := NewBuffer(10, 10, 1)
			for i := range src.Pix {
				if i%2 == 0 {
					src.Pix[i] = tt.lo
				} else {
					src.Pix[i] = tt.hi
				}
			}
			if got := OtsuLevel(src); got != tt.want {
				t.Errorf("OtsuLevel: got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestOtsuLevel_Uniform(t *testing.T) {
	src := NewBuffer(8, 8, 1)
	for i := range src.Pix {
		src.Pix[i] = 77
	}
	if got := OtsuLevel(src); got != 1 {
		t.Errorf("OtsuLevel: got %d, want 1", got)
	}
}

func TestBinarize(t *testing.T) {
	src := NewBuffer(20, 10, 3)
	for y := 0; y < 10; y++ {
		for x := 0; x < 20; x++ {
			v := uint8(40)
			if x >= 10 {
				v = 210
			}
			for c := 0; c < 3; c++ {
				src.Set(x, y, c, v)
			}
		}
	}

	result := Binarize(src)

	if result.Channels != 1 {
		t.Fatalf("Channels: got %d, want 1", result.Channels)
	}
	if !onlyValues(result, 0, 255) {
		t.Fatal("binarized output should contain only 0 and 255")
	}
	for y := 0; y < 10; y++ {
		for x := 0; x < 20; x++ {
			want := uint8(0)
			if x >= 10 {
				want = 255
			}
			if got := result.At(x, y, 0); got != want {
				t.Fatalf("pixel (%d,%d): got %d, want %d", x, y, got, want)
			}
		}
	}
}

func TestBinarize_Uniform(t *testing.T) {
	tests := []struct {
		name  string
		value uint8
		want  uint8
	}{
		{"black", 0, 0},
		{"gray", 128, 255},
		{"white", 255, 255},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Binarize(solidBuffer(6, 6, tt.value, tt.value, tt.value))
			for i, v := range result.Pix {
				if v != tt.want {
					t.Fatalf("pixel %d: got %d, want %d", i, v, tt.want)
				}
			}
		})
	}
}

func TestBinarize_Gradient(t *testing.T) {
	src := gradientGray(256, 4)
	level := OtsuLevel(src)

	result := Binarize(src)
	for x := 0; x < 256; x++ {
		fg := src.At(x, 0, 0) >= level
		if got := result.At(x, 0, 0) == 255; got != fg {
			t.Errorf("x=%d: foreground %v, want %v (level %d)", x, got, fg, level)
		}
	}
}
