package gain

import (
	"math"
	"testing"
)

func TestDbConversion(t *testing.T) {
	tests := []struct {
		db     float32
		linear float32
	}{
		{0, 1.0},
		{-6.0206, 0.5},
		{6.0206, 2.0},
		{-20, 0.1},
	}

	for _, tt := range tests {
		if got := DbToLinear32(tt.db); math.Abs(float64(got-tt.linear)) > 0.001 {
			t.Errorf("DbToLinear32(%f) = %f, want %f", tt.db, got, tt.linear)
		}
		if got := LinearToDb32(tt.linear); math.Abs(float64(got-tt.db)) > 0.01 {
			t.Errorf("LinearToDb32(%f) = %f, want %f", tt.linear, got, tt.db)
		}
	}

	if DbToLinear32(MinDB) != 0 {
		t.Error("MinDB should convert to silence")
	}
	if LinearToDb32(0) != MinDB {
		t.Error("Silence should convert to MinDB")
	}
}

func TestApplyTo(t *testing.T) {
	src := []float32{1, -1, 0.5}
	dst := make([]float32, 3)

	ApplyTo(dst, src, 0.5)

	want := []float32{0.5, -0.5, 0.25}
	for i := range want {
		if dst[i] != want[i] {
			t.Errorf("dst[%d] = %f, want %f", i, dst[i], want[i])
		}
	}
}

func TestRampTo(t *testing.T) {
	src := []float32{1, 1, 1, 1}
	dst := make([]float32, 4)

	RampTo(dst, src, 0, 1)

	if dst[3] != 1 {
		t.Errorf("Ramp must end exactly at the target, got %f", dst[3])
	}
	for i := 1; i < len(dst); i++ {
		if dst[i] < dst[i-1] {
			t.Errorf("Ramp not monotonic at %d: %v", i, dst)
		}
	}

	RampTo(dst, src, 0.5, 0.5)
	for i, s := range dst {
		if s != 0.5 {
			t.Errorf("Flat ramp sample %d = %f", i, s)
		}
	}
}

func TestHardClipBuffer(t *testing.T) {
	buf := []float32{-2, -0.5, 0.5, 2}
	HardClipBuffer(buf, 1)

	want := []float32{-1, -0.5, 0.5, 1}
	for i := range want {
		if buf[i] != want[i] {
			t.Errorf("buf[%d] = %f, want %f", i, buf[i], want[i])
		}
	}
}

func BenchmarkRampTo(b *testing.B) {
	src := make([]float32, 512)
	dst := make([]float32, 512)
	for i := 0; i < b.N; i++ {
		RampTo(dst, src, 0.2, 0.8)
	}
}
