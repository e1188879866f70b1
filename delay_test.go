package patch_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	patch "github.com/modular-dsp/patch"
	"github.com/modular-dsp/patch/event"
)

func TestEventDelayStagesAcrossBlocks(t *testing.T) {
	const blockLen = 4
	d := patch.NewEventDelay[string](16, 2)
	in := event.NewBuffer[string](16)
	out := event.NewBuffer[string](16)

	// An event at sample 3 shifts to sample 5, beyond the block.
	require.NoError(t, in.Push(3, "late"))
	require.NoError(t, d.Process(blockLen, in, out))
	assert.Zero(t, out.Len())

	// Next block it lands at sample 1.
	in.Clear()
	out.Clear()
	require.NoError(t, d.Process(blockLen, in, out))
	require.Equal(t, 1, out.Len())
	assert.Equal(t, 1, out.Events()[0].Sample)
	assert.Equal(t, "late", out.Events()[0].Value)
}

func TestEventDelayWithinBlock(t *testing.T) {
	d := patch.NewEventDelay[int](16, 2)
	in := event.NewBuffer[int](16)
	out := event.NewBuffer[int](16)

	require.NoError(t, in.Push(0, 10))
	require.NoError(t, in.Push(1, 11))
	require.NoError(t, d.Process(4, in, out))

	events := out.Events()
	require.Len(t, events, 2)
	assert.Equal(t, 2, events[0].Sample)
	assert.Equal(t, 3, events[1].Sample)
}

func TestEventDelayLongerThanBlock(t *testing.T) {
	// Delay 9 with block 4: the event crosses two whole blocks.
	d := patch.NewEventDelay[int](16, 9)
	in := event.NewBuffer[int](16)
	out := event.NewBuffer[int](16)

	require.NoError(t, in.Push(0, 42))
	require.NoError(t, d.Process(4, in, out))
	assert.Zero(t, out.Len())

	in.Clear()
	require.NoError(t, d.Process(4, in, out))
	assert.Zero(t, out.Len())

	require.NoError(t, d.Process(4, in, out))
	require.Equal(t, 1, out.Len())
	assert.Equal(t, 1, out.Events()[0].Sample)
}

func TestEventDelayReset(t *testing.T) {
	d := patch.NewEventDelay[int](16, 6)
	in := event.NewBuffer[int](16)
	out := event.NewBuffer[int](16)

	require.NoError(t, in.Push(0, 1))
	require.NoError(t, d.Process(4, in, out))
	d.Reset()

	in.Clear()
	require.NoError(t, d.Process(4, in, out))
	assert.Zero(t, out.Len())
}

func TestAudioDelayWhole(t *testing.T) {
	d := patch.NewAudioDelay(2)
	in := []float64{1, 2, 3, 4}
	out := make([]float64, 4)
	d.Process(in, out)
	assert.Equal(t, []float64{0, 0, 1, 2}, out)

	// History carries across calls.
	d.Process([]float64{5, 6}, out[:2])
	assert.Equal(t, []float64{3, 4}, out[:2])
}

func TestAudioDelayFractional(t *testing.T) {
	tests := []struct {
		name     string
		delay    float64
		input    []float64
		expected []float64
	}{
		{
			name:     "half sample",
			delay:    0.5,
			input:    []float64{1, 2, 3, 4},
			expected: []float64{0.5, 1.5, 2.5, 3.5},
		},
		{
			name:     "one and a half",
			delay:    1.5,
			input:    []float64{1, 2, 3, 4},
			expected: []float64{0, 0.5, 1.5, 2.5},
		},
		{
			name:     "zero",
			delay:    0,
			input:    []float64{1, 2, 3},
			expected: []float64{1, 2, 3},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			d := patch.NewAudioDelay(test.delay)
			out := make([]float64, len(test.input))
			d.Process(test.input, out)
			assert.InDeltaSlice(t, test.expected, out, 1e-12)
			assert.InDelta(t, test.delay, d.Latency(), 1e-12)
		})
	}
}

func TestAudioDelayReset(t *testing.T) {
	d := patch.NewAudioDelay(1)
	out := make([]float64, 2)
	d.Process([]float64{7, 8}, out)
	d.Reset()
	d.Process([]float64{1, 2}, out)
	assert.Equal(t, []float64{0, 1}, out)
}
