package pareto

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testMaxProgress = 1000
	testMaxQuality  = 2000
)

var sampleFront1 = []Value{
	{First: 300, Second: 100},
	{First: 200, Second: 200},
	{First: 100, Second: 300},
}

var sampleFront2 = []Value{
	{First: 300, Second: 50},
	{First: 250, Second: 150},
	{First: 150, Second: 250},
	{First: 50, Second: 270},
}

func TestMergeEmpty(t *testing.T) {
	b := NewBuilder(testMaxProgress, testMaxQuality)
	b.PushEmpty()
	b.PushEmpty()
	b.Merge()
	assert.Empty(t, b.Peek())
}

func TestValueShift(t *testing.T) {
	b := NewBuilder(testMaxProgress, testMaxQuality)
	b.Push(sampleFront1...)
	b.Add(100, 100)
	assert.Equal(t, []Value{
		{First: 400, Second: 200},
		{First: 300, Second: 300},
		{First: 200, Second: 400},
	}, b.Peek())
}

func TestMerge(t *testing.T) {
	b := NewBuilder(testMaxProgress, testMaxQuality)
	b.Push(sampleFront1...)
	b.Push(sampleFront2...)
	b.Merge()
	assert.Equal(t, []Value{
		{First: 300, Second: 100},
		{First: 250, Second: 150},
		{First: 200, Second: 200},
		{First: 150, Second: 250},
		{First: 100, Second: 300},
	}, b.Peek())
}

func TestMergeTruncated(t *testing.T) {
	b := NewBuilder(testMaxProgress, testMaxQuality)
	b.Push(sampleFront1...)
	b.Add(testMaxProgress, testMaxQuality)
	b.Push(sampleFront2...)
	b.Add(testMaxProgress, testMaxQuality)
	b.Merge()
	assert.Equal(t, []Value{{First: 1100, Second: 2300}}, b.Peek())
}

// TestRandomSimulation fuzzes the builder against a brute-force lookup
// table: for every (progress, quality) point pushed, the best quality
// reachable at or below a given progress should match what merging
// claims.
func TestRandomSimulation(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	b := NewBuilder(5000, 10000)
	var lut [5001]uint32

	for round := 0; round < 50; round++ {
		cnt := 1 + rng.Intn(100)
		for i := 0; i < cnt; i++ {
			progress := uint32(rng.Intn(5000))
			quality := uint32(rng.Intn(10000))
			for p := 0; p <= int(progress); p++ {
				if quality > lut[p] {
					lut[p] = quality
				}
			}
			b.Push(Value{First: progress, Second: quality})
		}
		for i := 1; i < cnt; i++ {
			b.Merge()
		}
	}
	for i := 1; i < 50; i++ {
		b.Merge()
	}

	front := b.Peek()
	require.NotEmpty(t, front)
	for _, v := range front {
		assert.Equal(t, lut[v.First], v.Second)
	}
}
