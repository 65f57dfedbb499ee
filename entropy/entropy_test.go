/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package entropy

import (
	"bytes"
	"math/big"
	"sync"
	"testing"
	"testing/iotest"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomBitsWidth(t *testing.T) {
	t.Parallel()

	seeded, err := NewSeededSource([]byte("width"))
	require.NoError(t, err)

	sources := map[string]Source{
		"os":     OS(),
		"fixed":  NewFixedSource(new(big.Int).Lsh(big.NewInt(1), 200)),
		"seeded": seeded,
	}
	for name, src := range sources {
		for _, n := range []int{0, 1, 7, 8, 9, 63, 64, 65, 1024} {
			buf, err := src.RandomBits(n)
			require.NoError(t, err, name)
			assert.Len(t, buf, (n+7)/8, "%s: %d bits", name, n)
			assert.LessOrEqual(t, ToInt(buf).BitLen(), n, "%s: %d bits", name, n)
		}
	}
}

func TestNegativeWidth(t *testing.T) {
	t.Parallel()

	_, err := OS().RandomBits(-1)
	require.EqualError(t, err, "cannot draw -1 bits")
}

func TestFixedSource(t *testing.T) {
	t.Parallel()

	one := NewFixedSource(big.NewInt(1))
	for _, n := range []int{1, 8, 160} {
		buf, err := one.RandomBits(n)
		require.NoError(t, err)
		assert.Equal(t, int64(1), ToInt(buf).Int64())
	}

	src := NewFixedSource(big.NewInt(0x1F3))
	buf, err := src.RandomBits(4)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x03}, buf)

	buf, err = src.RandomBits(12)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0xF3}, buf)

	buf, err = src.RandomBits(0)
	require.NoError(t, err)
	assert.Empty(t, buf)
}

func TestSeededSourceDeterminism(t *testing.T) {
	t.Parallel()

	a, err := NewSeededSource([]byte{0xDE, 0xAD})
	require.NoError(t, err)
	b, err := NewSeededSource([]byte{0xDE, 0xAD})
	require.NoError(t, err)
	c, err := NewSeededSource([]byte{0xBE, 0xEF})
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		x, err := a.RandomBits(256)
		require.NoError(t, err)
		y, err := b.RandomBits(256)
		require.NoError(t, err)
		z, err := c.RandomBits(256)
		require.NoError(t, err)

		assert.Equal(t, x, y)
		assert.NotEqual(t, x, z)
	}
}

func TestSeededSourceConcurrent(t *testing.T) {
	t.Parallel()

	src, err := NewSeededSource([]byte("concurrent"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	draws := make([][]byte, 64)
	for i := range draws {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			buf, err := src.RandomBits(128)
			assert.NoError(t, err)
			draws[i] = buf
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, d := range draws {
		assert.False(t, seen[string(d)], "keystream reused")
		seen[string(d)] = true
	}
}

func TestReaderSource(t *testing.T) {
	t.Parallel()

	src := NewReaderSource(bytes.NewReader([]byte{0xFF, 0xFF, 0xAB}))
	buf, err := src.RandomBits(9)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0xFF}, buf)

	_, err = src.RandomBits(16)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRandomnessUnavailable))

	_, err = NewReaderSource(iotest.ErrReader(errors.New("device gone"))).RandomBits(8)
	require.EqualError(t, err, "reading 1 bytes: device gone: randomness unavailable")
}
