package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javanhut/corelsp/internal/pkginfo"
)

func unitFor(t *testing.T, source string) *Unit {
	t.Helper()
	pkg := pkginfo.New("/ws/pkg", "m.pkg", "m", "/ws")
	pkg.SetFile("/ws/pkg/main.crl", source)
	return PreCompileProcess(pkg)
}

func TestCompileAfterParseStableAcrossIdenticalRecompiles(t *testing.T) {
	src := "spell greet(name):\n    return name\n"
	u1 := unitFor(t, src)
	u2 := unitFor(t, src)

	upstream := func(string) ([]byte, bool) { return nil, false }
	r1 := CompileAfterParse(u1, nil, upstream)
	r2 := CompileAfterParse(u2, r1.Blob, upstream)

	require.NotNil(t, r1.Blob)
	assert.False(t, r2.Changed, "recompiling unchanged sources must not change the interface blob")
}

func TestCompileAfterParseDetectsSignatureChange(t *testing.T) {
	before := unitFor(t, "spell greet(name):\n    return name\n")
	beforeRes := CompileAfterParse(before, nil, func(string) ([]byte, bool) { return nil, false })

	after := unitFor(t, "spell greetRenamed(name):\n    return name\n")
	afterRes := CompileAfterParse(after, beforeRes.Blob, func(string) ([]byte, bool) { return nil, false })

	assert.True(t, afterRes.Changed, "renaming an exported declaration must change the interface blob")
}

func TestCompileAfterParseFlagsMissingUpstreamBlob(t *testing.T) {
	u := unitFor(t, "import util\n\nspell run():\n    return 1\n")
	res := CompileAfterParse(u, nil, func(string) ([]byte, bool) { return nil, false })
	assert.Error(t, res.ImportErr)
}

func TestCompileAfterParseAcceptsCachedUpstreamBlob(t *testing.T) {
	u := unitFor(t, "import util\n\nspell run():\n    return 1\n")
	res := CompileAfterParse(u, nil, func(string) ([]byte, bool) { return []byte("cached"), true })
	assert.NoError(t, res.ImportErr)
	assert.Contains(t, res.Imports, "util")
}

func TestEmptyPackageYieldsEmptyBlobAndASTWithoutPanicking(t *testing.T) {
	pkg := pkginfo.New("/ws/pkg", "m.pkg", "m", "/ws")
	unit := PreCompileProcess(pkg)
	assert.Empty(t, unit.Files)

	res := CompileAfterParse(unit, nil, func(string) ([]byte, bool) { return nil, false })
	assert.NotNil(t, res.Blob)
	assert.True(t, res.Changed, "a first compile with no previous blob is always a change")
}
