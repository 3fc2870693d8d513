package lightmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsBadSizes(t *testing.T) {
	for _, size := range [][2]int{{0, 4}, {1, 1}, {3, 4}, {4, 12}, {-8, 8}} {
		_, err := New("bad", size[0], size[1])
		assert.ErrorIs(t, err, ErrUnsupportedSize, "%v", size)
	}

	lm, err := New("floor", 8, 4)
	require.NoError(t, err)
	w, h := lm.Size()
	assert.Equal(t, 8, w)
	assert.Equal(t, 4, h)
	assert.Equal(t, 32, lm.TexelCount())
}

func TestInitialBuffers(t *testing.T) {
	lm, err := New("walls", 4, 4)
	require.NoError(t, err)

	assert.Equal(t, [3]float32{0, 0, 0}, lm.At(2, 2))
	grey := float32(127) / 255
	assert.Equal(t, [3]float32{grey, grey, grey}, lm.InProgressAt(2, 2))
	assert.Equal(t, uint8(255), lm.Final().Pix[3])
}

func TestSetDoesNotPublish(t *testing.T) {
	lm, err := New("floor", 4, 4)
	require.NoError(t, err)

	lm.Set(1, 2, [3]float32{1, 0.5, 2})
	assert.Equal(t, [3]float32{1, 128.0 / 255, 1}, lm.InProgressAt(1, 2))
	assert.Equal(t, [3]float32{0, 0, 0}, lm.At(1, 2), "committed image untouched before commit")
	assert.Zero(t, lm.Version())
}

func TestCommitRow(t *testing.T) {
	lm, err := New("floor", 4, 4)
	require.NoError(t, err)

	lm.Set(0, 1, [3]float32{1, 1, 1})
	lm.Set(0, 2, [3]float32{1, 1, 1})
	lm.CommitRow(1)

	assert.Equal(t, [3]float32{1, 1, 1}, lm.At(0, 1))
	assert.Equal(t, [3]float32{0, 0, 0}, lm.At(0, 2))
	assert.Equal(t, uint64(1), lm.Version())

	lm.Commit()
	assert.Equal(t, [3]float32{1, 1, 1}, lm.At(0, 2))
	assert.Equal(t, uint64(2), lm.Version())
}

func TestSample(t *testing.T) {
	lm, err := New("floor", 2, 2)
	require.NoError(t, err)

	lm.Set(0, 0, [3]float32{0, 0, 0})
	lm.Set(1, 0, [3]float32{1, 1, 1})
	lm.Set(0, 1, [3]float32{0, 0, 0})
	lm.Set(1, 1, [3]float32{1, 1, 1})
	lm.Commit()

	assert.InDelta(t, 0.0, lm.Sample(0.25, 0.5)[0], 1e-6)
	assert.InDelta(t, 1.0, lm.Sample(0.75, 0.5)[0], 1e-6)
	assert.InDelta(t, 0.5, lm.Sample(0.5, 0.5)[0], 1e-6)
	assert.InDelta(t, 0.0, lm.Sample(-1, 0.5)[0], 1e-6, "clamped to edge")
}
