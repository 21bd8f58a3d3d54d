package workspace

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javanhut/corelsp/internal/cache"
	"github.com/javanhut/corelsp/internal/config"
)

// newTestWorkspace lays out a two-package workspace matching spec.md 8
// scenario 1: a module "m" whose root package imports its "util"
// subpackage.
func newTestWorkspace(t *testing.T) (*Engine, string) {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "util"), 0o755))

	mainSrc := "import util\n\nspell run():\n    return 1\n"
	utilSrc := "spell helper(x):\n    return x\n"

	require.NoError(t, os.WriteFile(filepath.Join(root, "main.crl"), []byte(mainSrc), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "util", "helper.crl"), []byte(utilSrc), 0o644))

	cfg := config.Default()
	cfg.Modules = []config.ModuleManifest{{Name: "m", SrcPath: "."}}
	cfg.WorkerCount = 1

	return New(root, cfg), root
}

// TestFullCompileBuildsGraphAndFreshness covers spec.md 8 scenario 1's
// initialization half: after FullCompile, the dependency edge and both
// packages' Fresh status and LRU residency all hold.
func TestFullCompileBuildsGraphAndFreshness(t *testing.T) {
	e, _ := newTestWorkspace(t)
	require.NoError(t, e.FullCompile(context.Background()))

	assert.Contains(t, e.Graph.Dependencies("m"), "m.util")
	assert.Contains(t, e.Graph.Dependents("m.util"), "m")
	assert.Equal(t, cache.Fresh, e.Iface.Status("m"))
	assert.Equal(t, cache.Fresh, e.Iface.Status("m.util"))

	_, ok := e.LRU.Get("m")
	assert.True(t, ok)
	_, ok = e.LRU.Get("m.util")
	assert.True(t, ok)
}

// TestEditingDependencyBodyKeepsDependentFresh covers the rest of scenario
// 1: editing util's function body without changing its exported surface
// recompiles m.util back to Fresh and never perturbs m's status.
func TestEditingDependencyBodyKeepsDependentFresh(t *testing.T) {
	e, root := newTestWorkspace(t)
	require.NoError(t, e.FullCompile(context.Background()))

	helperPath := filepath.Join(root, "util", "helper.crl")
	newBody := "spell helper(x):\n    return x + 1\n"
	require.NoError(t, e.ChangeDocument(context.Background(), helperPath, newBody))

	assert.Equal(t, cache.Fresh, e.Iface.Status("m.util"))
	assert.Equal(t, cache.Fresh, e.Iface.Status("m"))
}

// TestRenamingDependencyFunctionPropagatesStaleness covers spec.md 8
// scenario 2: a change to util's exported surface (here, the declaration's
// own name, the only signature detail this front end's interface blob
// currently tracks) leaves m Stale until something re-freshens it, and
// EnsureFresh is exactly that freshening path.
func TestRenamingDependencyFunctionPropagatesStaleness(t *testing.T) {
	e, root := newTestWorkspace(t)
	require.NoError(t, e.FullCompile(context.Background()))

	helperPath := filepath.Join(root, "util", "helper.crl")
	renamed := "spell helperRenamed(x):\n    return x\n"
	require.NoError(t, e.ChangeDocument(context.Background(), helperPath, renamed))

	assert.Equal(t, cache.Fresh, e.Iface.Status("m.util"))
	assert.Equal(t, cache.Stale, e.Iface.Status("m"))

	require.NoError(t, e.EnsureFresh(context.Background(), "m"))
	assert.Equal(t, cache.Fresh, e.Iface.Status("m"))
}

// TestCycleIntroducedDiagnosesWithoutAffectingUnrelatedPackage covers
// spec.md 8 scenario 3: introducing an import cycle between util and a new
// sub package attaches a synthetic diagnostic to every file in the cycle
// and leaves the unrelated m package untouched.
func TestCycleIntroducedDiagnosesWithoutAffectingUnrelatedPackage(t *testing.T) {
	e, root := newTestWorkspace(t)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0o755))
	subSrc := "import util\n\nspell subFn():\n    return 1\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "sub.crl"), []byte(subSrc), 0o644))
	require.NoError(t, e.FullCompile(context.Background()))

	require.Empty(t, e.packages["m"].Diag.ByFile)

	helperPath := filepath.Join(root, "util", "helper.crl")
	cyclic := "import sub\n\nspell helper(x):\n    return x\n"
	require.NoError(t, e.ChangeDocument(context.Background(), helperPath, cyclic))

	cycles, has := e.Graph.FindCycles()
	require.True(t, has)

	found := false
	for _, scc := range cycles {
		if containsAll(scc, "m.util", "m.sub") {
			found = true
		}
	}
	assert.True(t, found, "expected m.util/m.sub cycle, got %v", cycles)

	assert.NotEmpty(t, e.packages["m.util"].Diag.ByFile)
	assert.NotEmpty(t, e.packages["m.sub"].Diag.ByFile)
	assert.Empty(t, e.packages["m"].Diag.ByFile, "m is not part of the cycle and must not be diagnosed")
}

func containsAll(set []string, members ...string) bool {
	have := map[string]bool{}
	for _, s := range set {
		have[s] = true
	}
	for _, m := range members {
		if !have[m] {
			return false
		}
	}
	return true
}
