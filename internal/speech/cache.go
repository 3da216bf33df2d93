package speech

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/hammamikhairi/ottokiosk/internal/logger"
)

// DefaultCacheEntries bounds the in-memory layer. Success announcements
// embed doctor names and slot times, so the set of distinct texts grows all
// day; the fixed failure lines stay warm because they are hit constantly.
const DefaultCacheEntries = 64

// AudioCache is a thread-safe two-tier cache (in-memory LRU + filesystem)
// for synthesized audio. The key is sha256(namespace + ":" + text); the
// namespace is the TTS endpoint, so pointing the kiosk at another speech
// backend starts from a cold cache.
//
// Disk behaviour is controlled by diskWrite:
//
//	diskWrite=true  -> reads from mem, then disk; writes to both.
//	diskWrite=false -> reads from mem, then disk; writes to mem only.
type AudioCache struct {
	mem       *lru.Cache[string, []byte]
	log       *logger.Logger
	namespace string
	cacheDir  string // empty = no disk layer
	diskWrite bool
	hits      atomic.Int64
	misses    atomic.Int64
}

// NewAudioCache creates an audio cache.
//
//   - namespace: baked into every cache key (normally the TTS endpoint).
//   - cacheDir:  on-disk cache directory. Empty disables the disk layer.
//   - diskWrite: when false, existing files in cacheDir are still read but
//     nothing new is persisted.
func NewAudioCache(namespace, cacheDir string, diskWrite bool, log *logger.Logger) *AudioCache {
	// lru.New only fails for a non-positive size.
	mem, _ := lru.New[string, []byte](DefaultCacheEntries)
	c := &AudioCache{
		mem:       mem,
		log:       log,
		namespace: namespace,
		cacheDir:  cacheDir,
		diskWrite: diskWrite,
	}

	if cacheDir != "" && diskWrite {
		if err := os.MkdirAll(cacheDir, 0o755); err != nil {
			log.Error("cache: failed to create cache dir %s: %v", cacheDir, err)
		}
	}
	return c
}

// SetMaxEntries changes the in-memory bound. Values below 1 are ignored.
func (c *AudioCache) SetMaxEntries(n int) {
	if n < 1 {
		return
	}
	if evicted := c.mem.Resize(n); evicted > 0 {
		c.log.Debug("cache: resized to %d, evicted %d entries", n, evicted)
	}
}

// Get returns cached audio for text. Memory is checked first, then disk;
// a disk hit is promoted to memory.
func (c *AudioCache) Get(text string) ([]byte, bool) {
	key := c.hashKey(text)

	if audio, ok := c.mem.Get(key); ok {
		c.hits.Add(1)
		c.log.Debug("cache hit (mem): %s (%d bytes)", truncateForLog(text, 40), len(audio))
		return audio, true
	}

	if c.cacheDir != "" {
		if audio, ok := c.readDisk(key); ok {
			c.mem.Add(key, audio)
			c.hits.Add(1)
			c.log.Debug("cache hit (disk): %s (%d bytes)", truncateForLog(text, 40), len(audio))
			return audio, true
		}
	}

	c.misses.Add(1)
	return nil, false
}

// Put stores audio for text in memory, and on disk when enabled.
func (c *AudioCache) Put(text string, audio []byte) {
	key := c.hashKey(text)

	c.mem.Add(key, audio)
	c.log.Debug("cache store (mem): %s (%d bytes, %d entries)", truncateForLog(text, 40), len(audio), c.mem.Len())

	if c.cacheDir != "" && c.diskWrite {
		c.writeDisk(key, audio)
	}
}

// Has reports whether audio for text is cached in memory or on disk.
// It does not change recency.
func (c *AudioCache) Has(text string) bool {
	key := c.hashKey(text)
	if c.mem.Contains(key) {
		return true
	}
	return c.cacheDir != "" && c.existsOnDisk(key)
}

// Len returns the number of in-memory entries.
func (c *AudioCache) Len() int {
	return c.mem.Len()
}

// Stats returns hit and miss counts.
func (c *AudioCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *AudioCache) hashKey(text string) string {
	h := sha256.Sum256([]byte(c.namespace + ":" + text))
	return hex.EncodeToString(h[:])
}

// ── disk helpers ─────────────────────────────────────────────────

func (c *AudioCache) diskPath(key string) string {
	return filepath.Join(c.cacheDir, key+".audio")
}

func (c *AudioCache) readDisk(key string) ([]byte, bool) {
	data, err := os.ReadFile(c.diskPath(key))
	if err != nil || len(data) == 0 {
		return nil, false
	}
	return data, true
}

func (c *AudioCache) writeDisk(key string, audio []byte) {
	path := c.diskPath(key)
	if err := os.WriteFile(path, audio, 0o644); err != nil {
		c.log.Error("cache: disk write failed for %s: %v", path, err)
		return
	}
	c.log.Debug("cache store (disk): %s (%d bytes)", key[:12], len(audio))
}

func (c *AudioCache) existsOnDisk(key string) bool {
	_, err := os.Stat(c.diskPath(key))
	return err == nil
}

// truncateForLog shortens s to n runes so multi-byte scripts are never cut
// mid-character.
func truncateForLog(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
