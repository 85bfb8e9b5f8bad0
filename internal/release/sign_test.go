package release_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gantryci/gantry/internal/errors"
	"github.com/gantryci/gantry/internal/release"
)

// writeTestKeys generates a signing key pair and writes the armored
// private and public keys into dir.
func writeTestKeys(t *testing.T, dir string) (privPath, pubPath string) {
	t.Helper()

	entity, err := openpgp.NewEntity("gantry test", "", "ci@example.invalid", nil)
	require.NoError(t, err)

	privPath = filepath.Join(dir, "signing.asc")
	priv, err := os.Create(privPath)
	require.NoError(t, err)
	armored, err := armor.Encode(priv, openpgp.PrivateKeyType, nil)
	require.NoError(t, err)
	require.NoError(t, entity.SerializePrivate(armored, nil))
	require.NoError(t, armored.Close())
	require.NoError(t, priv.Close())

	pubPath = filepath.Join(dir, "verify.asc")
	pub, err := os.Create(pubPath)
	require.NoError(t, err)
	armored, err = armor.Encode(pub, openpgp.PublicKeyType, nil)
	require.NoError(t, err)
	require.NoError(t, entity.Serialize(armored))
	require.NoError(t, armored.Close())
	require.NoError(t, pub.Close())

	return privPath, pubPath
}

func TestSignAndVerify_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	privPath, pubPath := writeTestKeys(t, dir)

	manifestPath := filepath.Join(dir, "checksums.txt")
	require.NoError(t, os.WriteFile(manifestPath, []byte("abc123  pkg.tar.zst\n"), 0o600))

	sigPath, err := release.Sign(manifestPath, privPath)
	require.NoError(t, err)
	assert.Equal(t, manifestPath+".asc", sigPath)

	require.NoError(t, release.Verify(manifestPath, sigPath, pubPath))
}

func TestVerify_DetectsTamperedManifest(t *testing.T) {
	dir := t.TempDir()
	privPath, pubPath := writeTestKeys(t, dir)

	manifestPath := filepath.Join(dir, "checksums.txt")
	require.NoError(t, os.WriteFile(manifestPath, []byte("abc123  pkg.tar.zst\n"), 0o600))

	sigPath, err := release.Sign(manifestPath, privPath)
	require.NoError(t, err)

	// Swap out a checksum after signing.
	require.NoError(t, os.WriteFile(manifestPath, []byte("evil999  pkg.tar.zst\n"), 0o600))

	err = release.Verify(manifestPath, sigPath, pubPath)
	require.ErrorIs(t, err, errors.ErrSignatureInvalid)
}

func TestVerify_RejectsWrongKey(t *testing.T) {
	dir := t.TempDir()
	privPath, _ := writeTestKeys(t, dir)

	otherDir := t.TempDir()
	_, otherPub := writeTestKeys(t, otherDir)

	manifestPath := filepath.Join(dir, "checksums.txt")
	require.NoError(t, os.WriteFile(manifestPath, []byte("abc123  pkg.tar.zst\n"), 0o600))

	sigPath, err := release.Sign(manifestPath, privPath)
	require.NoError(t, err)

	err = release.Verify(manifestPath, sigPath, otherPub)
	require.ErrorIs(t, err, errors.ErrSignatureInvalid)
}

func TestSign_MissingKeyFile(t *testing.T) {
	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "checksums.txt")
	require.NoError(t, os.WriteFile(manifestPath, []byte("abc\n"), 0o600))

	_, err := release.Sign(manifestPath, filepath.Join(dir, "missing.asc"))
	require.ErrorIs(t, err, errors.ErrSigningKeyMissing)
}

func TestSign_PublicKeyOnlyCannotSign(t *testing.T) {
	dir := t.TempDir()
	_, pubPath := writeTestKeys(t, dir)

	manifestPath := filepath.Join(dir, "checksums.txt")
	require.NoError(t, os.WriteFile(manifestPath, []byte("abc\n"), 0o600))

	_, err := release.Sign(manifestPath, pubPath)
	require.ErrorIs(t, err, errors.ErrSigningKeyMissing)
}

func TestAssemble_BuildsManifestAndSignature(t *testing.T) {
	dir := t.TempDir()
	privPath, pubPath := writeTestKeys(t, dir)

	distDir := filepath.Join(dir, "dist")
	require.NoError(t, os.MkdirAll(distDir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(distDir, "mlc-llm-1.2.3-linux_x86_64.tar.zst"), []byte("pkg-a"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(distDir, "mlc-llm-1.2.3-darwin_aarch64.tar.zst"), []byte("pkg-b"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(distDir, "notes.txt"), []byte("ignored"), 0o600))

	log := zerolog.Nop()
	bundle, err := release.Assemble(&log, release.Options{
		DistDir:        distDir,
		SigningKeyPath: privPath,
	})
	require.NoError(t, err)

	assert.Len(t, bundle.Packages, 2, "only .tar.zst packages are bundled")
	assert.FileExists(t, bundle.ManifestPath)
	assert.FileExists(t, bundle.SignaturePath)

	data, readErr := os.ReadFile(bundle.ManifestPath)
	require.NoError(t, readErr)
	assert.Contains(t, string(data), "mlc-llm-1.2.3-linux_x86_64.tar.zst")
	assert.NotContains(t, string(data), "notes.txt")

	require.NoError(t, release.Verify(bundle.ManifestPath, bundle.SignaturePath, pubPath))
}

func TestAssemble_EmptyDistDir(t *testing.T) {
	log := zerolog.Nop()
	_, err := release.Assemble(&log, release.Options{DistDir: t.TempDir()})
	require.ErrorIs(t, err, errors.ErrNoArtifacts)
}

func TestAssemble_SigningIsOptional(t *testing.T) {
	distDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(distDir, "pkg.tar.zst"), []byte("pkg"), 0o600))

	log := zerolog.Nop()
	bundle, err := release.Assemble(&log, release.Options{DistDir: distDir})
	require.NoError(t, err)
	assert.Empty(t, bundle.SignaturePath)
}
