package rbtree_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/rbset/pkg/rbtree"
)

func TestCompressDecompressUInt32Slice(t *testing.T) {
	t.Parallel()

	data := make([]uint32, 1000)
	for idx := range data {
		data[idx] = 7
	}

	packed := rbtree.CompressUInt32Slice(data)
	assert.NotEmpty(t, packed, "Compression should produce some output")
	assert.Less(t, len(packed), len(data)*4)

	for idx := range data {
		data[idx] = 0
	}

	require.NoError(t, rbtree.DecompressUInt32Slice(packed, data))

	for idx := range data {
		assert.Equal(t, uint32(7), data[idx], "Value at index %d should be 7", idx)
	}
}

func TestCompressIncompressible(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(3)) //nolint:gosec // deterministic test data.
	data := make([]uint32, 512)

	for idx := range data {
		data[idx] = rng.Uint32()
	}

	packed := rbtree.CompressUInt32Slice(data)
	require.NotEmpty(t, packed)

	restored := make([]uint32, len(data))
	require.NoError(t, rbtree.DecompressUInt32Slice(packed, restored))
	assert.Equal(t, data, restored)
}

func TestDecompressErrors(t *testing.T) {
	t.Parallel()

	packed := rbtree.CompressUInt32Slice([]uint32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})

	require.ErrorIs(t, rbtree.DecompressUInt32Slice(packed, make([]uint32, 20)), rbtree.ErrShortBlock)
	require.Error(t, rbtree.DecompressUInt32Slice([]byte{0xff, 0xff}, make([]uint32, 10)))
}

func TestDeltaEncoding(t *testing.T) {
	t.Parallel()

	data := []uint32{3, 5, 6, 10, 100}
	rbtree.DeltaEncodeUInt32Slice(data)
	assert.Equal(t, []uint32{3, 2, 1, 4, 90}, data)

	rbtree.DeltaDecodeUInt32Slice(data)
	assert.Equal(t, []uint32{3, 5, 6, 10, 100}, data)

	empty := []uint32{}
	rbtree.DeltaEncodeUInt32Slice(empty)
	rbtree.DeltaDecodeUInt32Slice(empty)
	assert.Empty(t, empty)
}
