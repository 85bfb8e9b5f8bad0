package release_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gantryci/gantry/internal/constants"
	"github.com/gantryci/gantry/internal/release"
)

func writeTestPackages(t *testing.T) string {
	t.Helper()
	distDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(distDir, "mlc-llm-1.2.3-linux_x86_64.tar.zst"), []byte("pkg-a"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(distDir, "mlc-llm-1.2.3-darwin_aarch64.tar.zst"), []byte("pkg-b"), 0o600))
	return distDir
}

func TestAssemble_ReusesUnchangedBundle(t *testing.T) {
	distDir := writeTestPackages(t)
	log := zerolog.Nop()

	first, err := release.Assemble(&log, release.Options{DistDir: distDir})
	require.NoError(t, err)
	assert.False(t, first.Reused)
	assert.FileExists(t, filepath.Join(distDir, constants.BundleKeysFileName))

	// A marker surviving the second run proves the manifest was not rewritten.
	marker := []byte("# kept\n")
	f, err := os.OpenFile(first.ManifestPath, os.O_APPEND|os.O_WRONLY, 0o600)
	require.NoError(t, err)
	_, err = f.Write(marker)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	second, err := release.Assemble(&log, release.Options{DistDir: distDir})
	require.NoError(t, err)
	assert.True(t, second.Reused)
	assert.Equal(t, first.ManifestPath, second.ManifestPath)
	assert.Equal(t, first.Packages, second.Packages)

	data, err := os.ReadFile(second.ManifestPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# kept")
}

func TestAssemble_ReassemblesWhenPackageChanges(t *testing.T) {
	distDir := writeTestPackages(t)
	log := zerolog.Nop()

	_, err := release.Assemble(&log, release.Options{DistDir: distDir})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(distDir, "mlc-llm-1.2.3-linux_x86_64.tar.zst"), []byte("pkg-a-v2"), 0o600))

	bundle, err := release.Assemble(&log, release.Options{DistDir: distDir})
	require.NoError(t, err)
	assert.False(t, bundle.Reused)
}

func TestAssemble_ReassemblesWhenManifestMissing(t *testing.T) {
	distDir := writeTestPackages(t)
	log := zerolog.Nop()

	first, err := release.Assemble(&log, release.Options{DistDir: distDir})
	require.NoError(t, err)
	require.NoError(t, os.Remove(first.ManifestPath))

	bundle, err := release.Assemble(&log, release.Options{DistDir: distDir})
	require.NoError(t, err)
	assert.False(t, bundle.Reused)
	assert.FileExists(t, bundle.ManifestPath)
}

func TestAssemble_ReuseRequiresSignatureWhenSigning(t *testing.T) {
	dir := t.TempDir()
	privPath, _ := writeTestKeys(t, dir)
	distDir := writeTestPackages(t)
	log := zerolog.Nop()

	opts := release.Options{DistDir: distDir, SigningKeyPath: privPath}
	first, err := release.Assemble(&log, opts)
	require.NoError(t, err)
	require.NoError(t, os.Remove(first.SignaturePath))

	bundle, err := release.Assemble(&log, opts)
	require.NoError(t, err)
	assert.False(t, bundle.Reused)
	assert.FileExists(t, bundle.SignaturePath)
}
