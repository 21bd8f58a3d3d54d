package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// DiskCache persists, per package, a content-hash-keyed interface blob and
// symbol-index shard so a cold start can skip semantic analysis when
// nothing changed (spec.md 4.1 persisted state layout, 4.6.1 step 5,
// 4.6.5). Store/load for a given package are serialized by the caller
// (the package's PkgInfo mutex, per spec.md 5) — DiskCache itself does no
// per-package locking.
type DiskCache struct {
	root string
}

// NewDiskCache roots all persisted state under root/.cache.
func NewDiskCache(root string) *DiskCache {
	return &DiskCache{root: filepath.Join(root, ".cache")}
}

// SourcesHash hashes the concatenation of a package's file contents, used
// as the cache key that lets a cold start detect "nothing changed since
// last run" (scenario 6).
func SourcesHash(fileContents map[string]string) string {
	h := sha256.New()
	// Deterministic order: sort by path before hashing.
	paths := make([]string, 0, len(fileContents))
	for p := range fileContents {
		paths = append(paths, p)
	}
	sortStrings(paths)
	for _, p := range paths {
		h.Write([]byte(p))
		h.Write([]byte{0})
		h.Write([]byte(fileContents[p]))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

func pkgPathHash(pkgDir string) string {
	sum := sha256.Sum256([]byte(pkgDir))
	return hex.EncodeToString(sum[:])[:16]
}

func (d *DiskCache) astPath(pkgDir, sourcesHash string) string {
	return filepath.Join(d.root, "astdata", pkgPathHash(pkgDir), sourcesHash)
}

func (d *DiskCache) indexPath(pkgDir, sourcesHash string) string {
	return filepath.Join(d.root, "index", pkgPathHash(pkgDir), sourcesHash)
}

// LoadBlob returns the persisted interface blob for a package whose
// current sources hash to sourcesHash, or (nil, false) on a cache miss.
func (d *DiskCache) LoadBlob(pkgDir, sourcesHash string) ([]byte, bool) {
	data, err := os.ReadFile(d.astPath(pkgDir, sourcesHash))
	if err != nil {
		return nil, false
	}
	return data, true
}

// StoreBlob persists pkg's interface blob under its sources hash.
func (d *DiskCache) StoreBlob(pkgDir, sourcesHash string, blob []byte) error {
	path := d.astPath(pkgDir, sourcesHash)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "creating astdata dir for %s", pkgDir)
	}
	if err := os.WriteFile(path, blob, 0o644); err != nil {
		return errors.Wrapf(err, "writing interface blob for %s", pkgDir)
	}
	return nil
}

// LoadShard returns the gob-encoded symbol-index shard bytes for a package,
// or (nil, false) on a cache miss. The caller (internal/index) decodes.
//
// Persistence uses encoding/gob rather than a schema'd binary format: no
// flatbuffers/protobuf/cap'n'proto dependency appears anywhere in the
// example pack, and gob is the narrowest stdlib substitute for that gap
// (see DESIGN.md).
func (d *DiskCache) LoadShard(pkgDir, sourcesHash string) ([]byte, bool) {
	data, err := os.ReadFile(d.indexPath(pkgDir, sourcesHash))
	if err != nil {
		return nil, false
	}
	return data, true
}

// StoreShard persists the gob-encoded shard bytes for a package.
func (d *DiskCache) StoreShard(pkgDir, sourcesHash string, shard []byte) error {
	path := d.indexPath(pkgDir, sourcesHash)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "creating index dir for %s", pkgDir)
	}
	if err := os.WriteFile(path, shard, 0o644); err != nil {
		return errors.Wrapf(err, "writing index shard for %s", pkgDir)
	}
	return nil
}
