package service

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkedCache(t *testing.T) {
	assert.Nil(t, newChunkedCache(0, time.Minute))

	c := newChunkedCache(512*1024, time.Minute)
	value := bytes.Repeat([]byte("0123456789"), 2000)

	_, ok := c.Get("list")
	assert.False(t, ok)

	require.NoError(t, c.Set("list", value))
	got, ok := c.Get("list")
	require.True(t, ok)
	assert.Equal(t, value, got)
	assert.Positive(t, c.cache.HitCount())

	require.NoError(t, c.Set("list", []byte("[]")))
	got, ok = c.Get("list")
	require.True(t, ok)
	assert.Equal(t, []byte("[]"), got)

	require.NoError(t, c.Set("empty", nil))
	got, ok = c.Get("empty")
	require.True(t, ok)
	assert.Empty(t, got)

	c.Del("list")
	_, ok = c.Get("list")
	assert.False(t, ok)
}

func TestChunkedCache_MissingChunk(t *testing.T) {
	c := newChunkedCache(512*1024, time.Minute)
	require.NoError(t, c.Set("list", bytes.Repeat([]byte("x"), 4*c.chunkSize)))

	header, err := c.cache.Get([]byte("list"))
	require.NoError(t, err)
	gen, _, _ := bytes.Cut(header, []byte(":"))
	c.cache.Del(chunkKey("list", string(gen), 2))

	_, ok := c.Get("list")
	assert.False(t, ok)
}
