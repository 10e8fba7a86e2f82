package cache

import (
	"fmt"
	"os"
	"sync"

	"github.com/cespare/xxhash"
	"github.com/rs/zerolog/log"

	"github.com/domino14/handmatch/config"
	"github.com/domino14/handmatch/template"
)

// The cache holds template libraries that have already been parsed, so that
// a long-running process (the shell, the NATS service, a warm lambda) only
// pays for schema validation once per file. An entry is reloaded when the
// file's contents change.

type entry struct {
	fingerprint uint64
	lib         *template.Library
}

type cache struct {
	sync.Mutex
	objects map[string]entry
}

// LoadFunc parses a library from a path.
type LoadFunc func(cfg *config.Config, path string) (*template.Library, error)

// GlobalLibraryCache is the process-wide library cache.
var GlobalLibraryCache *cache

// Fingerprint hashes raw library bytes.
func Fingerprint(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// FingerprintString returns the fingerprint as fixed-width hex, suitable
// for use in cache keys.
func FingerprintString(fp uint64) string {
	return fmt.Sprintf("%016x", fp)
}

func (c *cache) get(cfg *config.Config, path string, loadFunc LoadFunc) (*template.Library, uint64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, err
	}
	fp := Fingerprint(data)

	c.Lock()
	defer c.Unlock()
	if e, ok := c.objects[path]; ok && e.fingerprint == fp {
		log.Debug().Str("key", path).Msg("getting-library-from-cache")
		return e.lib, fp, nil
	}
	log.Debug().Str("key", path).Str("fingerprint", FingerprintString(fp)).Msg("loading-library-into-cache")
	lib, err := loadFunc(cfg, path)
	if err != nil {
		return nil, 0, err
	}
	c.objects[path] = entry{fingerprint: fp, lib: lib}
	return lib, fp, nil
}

func CreateGlobalLibraryCache() {
	GlobalLibraryCache = &cache{objects: make(map[string]entry)}
}

// DefaultLoadFunc loads a library from disk.
func DefaultLoadFunc(cfg *config.Config, path string) (*template.Library, error) {
	return template.LoadLibrary(path)
}

// Load returns the library at path, parsing it only if it is not cached or
// its contents changed since it was cached. It also returns the contents'
// fingerprint. A nil loadFunc means DefaultLoadFunc.
func Load(cfg *config.Config, path string, loadFunc LoadFunc) (*template.Library, uint64, error) {
	if loadFunc == nil {
		loadFunc = DefaultLoadFunc
	}
	if GlobalLibraryCache == nil {
		CreateGlobalLibraryCache()
	}
	return GlobalLibraryCache.get(cfg, path, loadFunc)
}
