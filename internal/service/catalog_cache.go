package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/coocood/freecache"
	"github.com/google/uuid"
)

const (
	// freecache rounds smaller caches up to this size.
	minCacheSize = 512 * 1024
	// Room left in each entry for the chunk key and freecache's entry header.
	chunkOverhead = 128
)

// chunkedCache stores values larger than freecache's per-entry limit (1/1024
// of the cache size) as a header entry naming a generation plus numbered
// chunks. Chunk keys carry the generation so a reader never mixes chunks of
// two writes; a missing chunk is a miss.
type chunkedCache struct {
	cache     *freecache.Cache
	chunkSize int
	ttl       int
}

// newChunkedCache returns nil when size is not positive, which disables caching.
func newChunkedCache(size int, ttl time.Duration) *chunkedCache {
	if size <= 0 {
		return nil
	}
	size = max(size, minCacheSize)
	return &chunkedCache{
		cache:     freecache.NewCache(size),
		chunkSize: size/1024 - chunkOverhead,
		ttl:       int(ttl.Seconds()),
	}
}

func (c *chunkedCache) Get(key string) ([]byte, bool) {
	header, err := c.cache.Get([]byte(key))
	if err != nil {
		return nil, false
	}
	gen, countText, ok := strings.Cut(string(header), ":")
	count, err := strconv.Atoi(countText)
	if !ok || err != nil {
		return nil, false
	}

	var value []byte
	for i := range count {
		part, err := c.cache.Get(chunkKey(key, gen, i))
		if err != nil {
			return nil, false
		}
		value = append(value, part...)
	}
	return value, true
}

func (c *chunkedCache) Set(key string, value []byte) error {
	gen := uuid.New().String()

	count := 0
	for start := 0; start < len(value) || count == 0; start += c.chunkSize {
		end := min(start+c.chunkSize, len(value))
		if err := c.cache.Set(chunkKey(key, gen, count), value[start:end], c.ttl); err != nil {
			return fmt.Errorf("cache chunk %d of %s: %w", count, key, err)
		}
		count++
	}
	return c.cache.Set([]byte(key), []byte(gen+":"+strconv.Itoa(count)), c.ttl)
}

// Del drops the header; the orphaned chunks age out of the ring buffer.
func (c *chunkedCache) Del(key string) {
	c.cache.Del([]byte(key))
}

func chunkKey(key, gen string, i int) []byte {
	return []byte(key + ":" + gen + ":" + strconv.Itoa(i))
}
