package patch_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	patch "github.com/modular-dsp/patch"
)

func TestSumAudio(t *testing.T) {
	tests := []struct {
		name     string
		srcs     [][]float64
		expected []float64
	}{
		{
			name:     "no sources",
			srcs:     nil,
			expected: []float64{0, 0, 0},
		},
		{
			name:     "single source",
			srcs:     [][]float64{{1, 2, 3}},
			expected: []float64{1, 2, 3},
		},
		{
			name:     "three sources",
			srcs:     [][]float64{{1, 2, 3}, {10, 20, 30}, {-1, -2, -3}},
			expected: []float64{10, 20, 30},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			dst := []float64{9, 9, 9}
			patch.SumAudio(dst, test.srcs...)
			assert.Equal(t, test.expected, dst)
		})
	}
}
