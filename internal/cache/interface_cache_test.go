package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMonotonicStatus(t *testing.T) {
	c := NewInterfaceCache()
	c.Set("m.util", []byte("blob"))
	assert.Equal(t, Fresh, c.Status("m.util"))

	c.UpdateStatus([]string{"m.util"}, WeakStale)
	assert.Equal(t, WeakStale, c.Status("m.util"))

	// Moving to a less-stale status via UpdateStatus must not regress it.
	c.UpdateStatus([]string{"m.util"}, Fresh)
	assert.Equal(t, WeakStale, c.Status("m.util"))

	c.UpdateStatus([]string{"m.util"}, Stale)
	assert.Equal(t, Stale, c.Status("m.util"))

	// Only Set resets to Fresh, simulating a successful recompile.
	c.Set("m.util", []byte("blob2"))
	assert.Equal(t, Fresh, c.Status("m.util"))
}

func TestCheckStatus(t *testing.T) {
	c := NewInterfaceCache()
	c.Set("a", []byte("1"))
	c.Set("b", []byte("1"))
	c.UpdateStatus([]string{"a"}, Stale)

	assert.Equal(t, []string{"a"}, c.CheckStatus([]string{"a", "b"}))
}

func TestDiskCacheRoundTrip(t *testing.T) {
	dir := t.TempDir()
	d := NewDiskCache(dir)

	hash := SourcesHash(map[string]string{"a.crl": "x = 1"})
	_, ok := d.LoadBlob("/pkg/a", hash)
	assert.False(t, ok)

	assert.NoError(t, d.StoreBlob("/pkg/a", hash, []byte("blob")))
	got, ok := d.LoadBlob("/pkg/a", hash)
	assert.True(t, ok)
	assert.Equal(t, []byte("blob"), got)
}
