package patch_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	patch "github.com/modular-dsp/patch"
)

func TestPerSampleAppliesParamEvents(t *testing.T) {
	b := patch.NewBuilder()
	audio := b.AddInput(patch.Audio)
	params := b.AddInput(patch.Param)
	vca := b.AddModule("vca", patch.PerSample(&sampleGain{}))
	out := b.AddOutput(patch.Audio)

	_, err := b.ConnectInput(audio, vca.In(patch.Audio, 0))
	require.NoError(t, err)
	_, err = b.ConnectInput(params, vca.In(patch.Param, 0))
	require.NoError(t, err)
	_, err = b.ConnectOutput(vca.Out(patch.Audio, 0), out)
	require.NoError(t, err)

	s, err := b.Compile(out)
	require.NoError(t, err)
	require.NoError(t, s.Prepare(testStream))

	// Gain 1 from the start of the block, halved at sample 4.
	require.NoError(t, s.InputParams(params).Push(0, 1))
	require.NoError(t, s.InputParams(params).Push(4, 0.5))

	input := []float64{1, 1, 1, 1, 1, 1, 1, 1}
	output := make([]float64, len(input))
	_, err = s.Process([][]float64{input}, [][]float64{output})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 1, 1, 0.5, 0.5, 0.5, 0.5}, output)
}

func TestPerSampleMatchesBlockProcessing(t *testing.T) {
	input := []float64{0.5, -1, 0.25, 2, 0, 3, -0.5, 1}

	blockOut := make([]float64, len(input))
	sampleOut := make([]float64, len(input))

	run := func(m patch.Module, out []float64) {
		b := patch.NewBuilder()
		in := b.AddInput(patch.Audio)
		n := b.AddModule("m", m)
		o := b.AddOutput(patch.Audio)
		_, err := b.ConnectInput(in, n.In(patch.Audio, 0))
		require.NoError(t, err)
		_, err = b.ConnectOutput(n.Out(patch.Audio, 0), o)
		require.NoError(t, err)
		s, err := b.Compile(o)
		require.NoError(t, err)
		require.NoError(t, s.Prepare(testStream))
		_, err = s.Process([][]float64{input}, [][]float64{out})
		require.NoError(t, err)
	}

	run(&gain{factor: 3}, blockOut)
	run(patch.PerSample(&fixedSampleGain{factor: 3}), sampleOut)
	assert.Equal(t, blockOut, sampleOut)
}

func TestPerSampleTailAndDone(t *testing.T) {
	b := patch.NewBuilder()
	in := b.AddInput(patch.Audio)
	m := b.AddModule("decay", patch.PerSample(&decaying{tail: 12}))
	out := b.AddOutput(patch.Audio)

	_, err := b.ConnectInput(in, m.In(patch.Audio, 0))
	require.NoError(t, err)
	_, err = b.ConnectOutput(m.Out(patch.Audio, 0), out)
	require.NoError(t, err)

	s, err := b.Compile(out)
	require.NoError(t, err)
	require.NoError(t, s.Prepare(testStream))

	input := make([]float64, testStream.BufferSize)
	output := make([]float64, testStream.BufferSize)

	// 12 tail samples at block size 8: done during the second block.
	status, err := s.Process([][]float64{input}, [][]float64{output})
	require.NoError(t, err)
	assert.Equal(t, patch.Continue, status)

	status, err = s.Process([][]float64{input}, [][]float64{output})
	require.NoError(t, err)
	assert.Equal(t, patch.Done, status)
}

// sampleGain scales its input by a parameter-controlled gain.
type sampleGain struct{}

func (m *sampleGain) SampleSockets() (int, int, int) { return 1, 1, 1 }

func (m *sampleGain) Prepare(patch.StreamData) error { return nil }

func (m *sampleGain) ProcessSample(in, params, out []float64) patch.SampleStatus {
	out[0] = in[0] * params[0]
	return patch.SampleContinue
}

// fixedSampleGain scales by a constant, no parameters.
type fixedSampleGain struct {
	factor float64
}

func (m *fixedSampleGain) SampleSockets() (int, int, int) { return 1, 1, 0 }

func (m *fixedSampleGain) Prepare(patch.StreamData) error { return nil }

func (m *fixedSampleGain) ProcessSample(in, _, out []float64) patch.SampleStatus {
	out[0] = in[0] * m.factor
	return patch.SampleContinue
}

// decaying reports a shrinking tail until it is done.
type decaying struct {
	tail int
	left int
}

func (m *decaying) SampleSockets() (int, int, int) { return 1, 1, 0 }

func (m *decaying) Prepare(patch.StreamData) error {
	m.left = m.tail
	return nil
}

func (m *decaying) ProcessSample(_, _, out []float64) patch.SampleStatus {
	out[0] = 0
	if m.left == 0 {
		return patch.SampleDone
	}
	m.left--
	return patch.Tail(m.left + 1)
}
