package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"cbridge/internal/project"
	"cbridge/internal/version"
)

// Current schema version - increment when CachedOutput format changes
const outputCacheSchemaVersion uint16 = 1

// OutputCache хранит сгенерированные модули по ключу из хешей входа и опций.
// Thread-safe for concurrent access.
type OutputCache struct {
	mu  sync.RWMutex
	dir string
}

// CachedOutput is a generated module as stored on disk. Only modules
// generated without diagnostics are cached, so nothing needs replaying.
type CachedOutput struct {
	// Schema version for safe invalidation when format changes
	Schema uint16

	Module     string
	HeaderName string
	SourceName string
	Header     string
	Source     string
	Wrappers   int
	Exceptions uint8
}

// OpenOutputCache initializes and returns a cache at the standard location.
func OpenOutputCache(app string) (*OutputCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return NewOutputCache(filepath.Join(base, app))
}

// NewOutputCache uses dir as the cache root.
func NewOutputCache(dir string) (*OutputCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &OutputCache{dir: dir}, nil
}

// CacheKey identifies a generation: the module hash (input plus imported
// modules), the typemaps and every option that changes the output.
func CacheKey(module project.Digest, typemaps []byte, opts Options) project.Digest {
	h := sha256.New()
	_, _ = h.Write(module[:])
	_, _ = h.Write(typemaps)
	_, _ = fmt.Fprintf(h, "\x00%s\x00%s\x00%t\x00%t\x00%s\x00%s\x00%s\x00%s\x00%q",
		version.Version, opts.Module, opts.Facade, opts.Exceptions, opts.Language,
		opts.Namespace, opts.Prefix, opts.HeaderName+"|"+opts.SourceName, opts.Includes)
	var out project.Digest
	copy(out[:], h.Sum(nil))
	return out
}

func (c *OutputCache) pathFor(key project.Digest) string {
	hexKey := hex.EncodeToString(key[:])
	// Для удобства читаемости/очистки — подкаталог "out".
	return filepath.Join(c.dir, "out", hexKey+".mp")
}

// Put serializes and writes a result to the cache.
func (c *OutputCache) Put(key project.Digest, res *Result) (err error) {
	if c == nil || res == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(f.Name())
		}
	}()

	payload := CachedOutput{
		Schema:     outputCacheSchemaVersion,
		Module:     res.Module,
		HeaderName: res.HeaderName,
		SourceName: res.SourceName,
		Header:     res.Header,
		Source:     res.Source,
		Wrappers:   res.Wrappers,
		Exceptions: uint8(res.Exceptions),
	}
	if err = msgpack.NewEncoder(f).Encode(&payload); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), p)
}

// Get reads a result from the cache. Entries of another schema are misses.
func (c *OutputCache) Get(key project.Digest) (*Result, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var payload CachedOutput
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return nil, false, err
	}
	if payload.Schema != outputCacheSchemaVersion {
		return nil, false, nil
	}
	return &Result{
		Module:     payload.Module,
		HeaderName: payload.HeaderName,
		SourceName: payload.SourceName,
		Header:     payload.Header,
		Source:     payload.Source,
		Wrappers:   payload.Wrappers,
		Exceptions: ExceptionMode(payload.Exceptions),
	}, true, nil
}

// DropAll invalidates the cache, useful after format changes.
func (c *OutputCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// тривиально: переименуем каталог и удалим
	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}
