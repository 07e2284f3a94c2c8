package safeconv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMustIntToUint32(t *testing.T) {
	t.Parallel()

	t.Run("normal_value", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, uint32(42), MustIntToUint32(42))
	})

	t.Run("max_uint32", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, uint32(math.MaxUint32), MustIntToUint32(math.MaxUint32))
	})

	t.Run("negative_panics", func(t *testing.T) {
		t.Parallel()

		assert.PanicsWithValue(t, "safeconv: int to uint32 out of bounds", func() {
			MustIntToUint32(-1)
		})
	})

	t.Run("overflow_panics", func(t *testing.T) {
		t.Parallel()

		assert.PanicsWithValue(t, "safeconv: int to uint32 out of bounds", func() {
			MustIntToUint32(math.MaxUint32 + 1)
		})
	})
}

func TestMustIntToInt32(t *testing.T) {
	t.Parallel()

	t.Run("bounds", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, int32(math.MinInt32), MustIntToInt32(math.MinInt32))
		assert.Equal(t, int32(math.MaxInt32), MustIntToInt32(math.MaxInt32))
	})

	t.Run("overflow_panics", func(t *testing.T) {
		t.Parallel()

		assert.PanicsWithValue(t, "safeconv: int to int32 out of bounds", func() {
			MustIntToInt32(math.MaxInt32 + 1)
		})
		assert.PanicsWithValue(t, "safeconv: int to int32 out of bounds", func() {
			MustIntToInt32(math.MinInt32 - 1)
		})
	})
}

func TestMustUint64ToInt64(t *testing.T) {
	t.Parallel()

	t.Run("normal_value", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, int64(7), MustUint64ToInt64(7))
		assert.Equal(t, int64(math.MaxInt64), MustUint64ToInt64(math.MaxInt64))
	})

	t.Run("overflow_panics", func(t *testing.T) {
		t.Parallel()

		assert.PanicsWithValue(t, "safeconv: uint64 to int64 overflow", func() {
			MustUint64ToInt64(math.MaxInt64 + 1)
		})
	})
}
