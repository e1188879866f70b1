package ring_test

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/modular-dsp/patch/ring"
)

func TestPushPop(t *testing.T) {
	producer, consumer := ring.New[int](4)

	require.NoError(t, producer.Push(1))
	require.NoError(t, producer.Push(2))
	require.NoError(t, producer.Push(3))

	assert.Equal(t, 3, consumer.Len())
	assertPop(t, consumer, 1)
	assertPop(t, consumer, 2)
	assertPop(t, consumer, 3)
	_, ok := consumer.Pop()
	assert.False(t, ok)

	// The buffer is reusable after draining.
	require.NoError(t, producer.Push(4))
	assertPop(t, consumer, 4)
}

func TestPushFullThenOverride(t *testing.T) {
	producer, consumer := ring.New[int](2)

	require.NoError(t, producer.Push(1))
	require.NoError(t, producer.Push(2))
	assert.ErrorIs(t, producer.Push(3), ring.ErrFull)

	evicted, ok := producer.PushOverriding(3)
	require.True(t, ok)
	assert.Equal(t, 1, evicted)

	var drained []int
	consumer.Drain(func(v int) bool {
		drained = append(drained, v)
		return true
	})
	assert.Equal(t, []int{2, 3}, drained)
}

func TestWrapping(t *testing.T) {
	producer, consumer := ring.New[int](4)
	for i := 1; i <= 4; i++ {
		require.NoError(t, producer.Push(i))
	}
	assertPop(t, consumer, 1)
	assertPop(t, consumer, 2)
	require.NoError(t, producer.Push(5))
	require.NoError(t, producer.Push(6))
	for i := 3; i <= 6; i++ {
		assertPop(t, consumer, i)
	}
}

func TestPushSlice(t *testing.T) {
	producer, consumer := ring.New[int](4)
	require.NoError(t, producer.Push(0))
	n := producer.PushSlice([]int{1, 2, 3, 4, 5})
	assert.Equal(t, 3, n)

	out := make([]int, 8)
	assert.Equal(t, 4, consumer.PopSlice(out))
	assert.Equal(t, []int{0, 1, 2, 3}, out[:4])
}

func TestPushSliceOverriding(t *testing.T) {
	producer, consumer := ring.New[int](4)
	producer.PushSlice([]int{1, 2, 3})
	producer.PushSliceOverriding([]int{4, 5, 6})

	out := make([]int, 4)
	require.Equal(t, 4, consumer.PopSlice(out))
	assert.Equal(t, []int{3, 4, 5, 6}, out)
}

func TestConcurrentProducerConsumer(t *testing.T) {
	defer goleak.VerifyNone(t)

	const count = 10000
	producer, consumer := ring.New[int](64)
	done := make(chan []int)

	go func() {
		received := make([]int, 0, count)
		for len(received) < count {
			if v, ok := consumer.Pop(); ok {
				received = append(received, v)
			}
		}
		done <- received
	}()

	for i := 0; i < count; i++ {
		for producer.Push(i) != nil {
			// Consumer is catching up.
		}
	}

	received := <-done
	require.Len(t, received, count)
	for i, v := range received {
		require.Equal(t, i, v, "items must arrive in FIFO order")
	}
}

func TestFIFOModel(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("drains in push order with bounded loss to eviction", prop.ForAll(
		func(items []int, capacity int) bool {
			producer, consumer := ring.New[int](capacity)
			for _, item := range items {
				producer.PushOverriding(item)
			}
			// The buffer holds the newest min(len(items), capacity) items.
			keep := len(items)
			if keep > capacity {
				keep = capacity
			}
			expected := items[len(items)-keep:]
			got := make([]int, len(items)+1)
			n := consumer.PopSlice(got)
			if n != keep {
				return false
			}
			for i := 0; i < n; i++ {
				if got[i] != expected[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(-1000, 1000)),
		gen.IntRange(1, 16),
	))

	properties.TestingRun(t)
}

func assertPop(t *testing.T, c *ring.Consumer[int], expected int) {
	t.Helper()
	v, ok := c.Pop()
	require.True(t, ok)
	assert.Equal(t, expected, v)
}
