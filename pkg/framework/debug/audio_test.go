package debug

import (
	"math"
	"testing"
)

func TestIsSilent(t *testing.T) {
	if !IsSilent([][]float32{make([]float32, 8), make([]float32, 8)}) {
		t.Error("Zero buffers should be silent")
	}
	if IsSilent([][]float32{make([]float32, 8), {0, 0, 1e-9}}) {
		t.Error("Any non-zero sample breaks silence")
	}
	if !IsSilent(nil) {
		t.Error("No channels is silent")
	}
}

func TestHasNonFinite(t *testing.T) {
	tests := []struct {
		name     string
		channels [][]float32
		want     bool
	}{
		{"finite", [][]float32{{0.1, -0.2}}, false},
		{"nan", [][]float32{{0.1}, {float32(math.NaN())}}, true},
		{"positive infinity", [][]float32{{float32(math.Inf(1))}}, true},
		{"negative infinity", [][]float32{{0, float32(math.Inf(-1))}}, true},
		{"no channels", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasNonFinite(tt.channels); got != tt.want {
				t.Errorf("HasNonFinite = %v, want %v", got, tt.want)
			}
		})
	}
}

func BenchmarkHasNonFinite(b *testing.B) {
	channels := [][]float32{make([]float32, 512), make([]float32, 512)}
	for i := range channels[0] {
		channels[0][i] = float32(math.Sin(2 * math.Pi * float64(i) / 100))
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = HasNonFinite(channels)
	}
}
