package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/handmatch/config"
	"github.com/domino14/handmatch/template"
)

func TestLoadCachesUntilContentsChange(t *testing.T) {
	is := is.New(t)
	CreateGlobalLibraryCache()

	src, err := os.ReadFile("../template/testdata/small.json")
	is.NoErr(err)
	path := filepath.Join(t.TempDir(), "lib.json")
	is.NoErr(os.WriteFile(path, src, 0644))

	calls := 0
	counting := func(cfg *config.Config, p string) (*template.Library, error) {
		calls++
		return DefaultLoadFunc(cfg, p)
	}
	cfg := config.DefaultConfig()

	lib1, fp1, err := Load(cfg, path, counting)
	is.NoErr(err)
	lib2, fp2, err := Load(cfg, path, counting)
	is.NoErr(err)
	is.Equal(calls, 1)
	is.Equal(fp1, fp2)
	is.True(lib1 == lib2)
	is.Equal(fp1, Fingerprint(src))

	// same bytes again: still cached
	is.NoErr(os.WriteFile(path, src, 0644))
	_, _, err = Load(cfg, path, counting)
	is.NoErr(err)
	is.Equal(calls, 1)

	is.NoErr(os.WriteFile(path, append(src, ' '), 0644))
	lib3, fp3, err := Load(cfg, path, counting)
	is.NoErr(err)
	is.Equal(calls, 2)
	is.True(fp3 != fp1)
	is.Equal(len(lib3.Templates), 2)
}

func TestLoadMissingFile(t *testing.T) {
	is := is.New(t)
	CreateGlobalLibraryCache()
	_, _, err := Load(config.DefaultConfig(), "no/such/file.json", nil)
	is.True(err != nil)
}

func TestLoadErrorNotCached(t *testing.T) {
	is := is.New(t)
	CreateGlobalLibraryCache()
	_, _, err := Load(config.DefaultConfig(), "../template/testdata/bad_schema.json", nil)
	is.True(err != nil)
	is.Equal(len(GlobalLibraryCache.objects), 0)
}

func TestFingerprintString(t *testing.T) {
	is := is.New(t)
	is.Equal(len(FingerprintString(Fingerprint([]byte("x")))), 16)
	is.Equal(FingerprintString(0), "0000000000000000")
}
