package release

import (
	"bytes"
	"os"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/clearsign"

	"github.com/gantryci/gantry/internal/errors"
)

// Sign clear-signs the manifest with the armored private key at keyPath
// and writes the result next to it with an .asc suffix. Returns the
// signature path.
func Sign(manifestPath, keyPath string) (string, error) {
	entity, err := readSigningKey(keyPath)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(manifestPath) //nolint:gosec // path comes from bundle assembly
	if err != nil {
		return "", errors.Wrap(err, "failed to read manifest")
	}

	var signed bytes.Buffer
	w, err := clearsign.Encode(&signed, entity.PrivateKey, nil)
	if err != nil {
		return "", errors.Wrap(err, "failed to start clear-sign")
	}
	if _, err = w.Write(data); err != nil {
		return "", errors.Wrap(err, "failed to sign manifest")
	}
	if err = w.Close(); err != nil {
		return "", errors.Wrap(err, "failed to finalize signature")
	}

	sigPath := manifestPath + ".asc"
	if err = os.WriteFile(sigPath, signed.Bytes(), 0o600); err != nil {
		return "", errors.Wrap(err, "failed to write signature")
	}
	return sigPath, nil
}

// Verify checks a clear-signed manifest against the armored public key
// at keyPath and confirms the signed text matches the manifest on disk.
func Verify(manifestPath, sigPath, keyPath string) error {
	keyring, err := readKeyring(keyPath)
	if err != nil {
		return err
	}

	signed, err := os.ReadFile(sigPath) //nolint:gosec // path comes from config or a flag
	if err != nil {
		return errors.Wrap(err, "failed to read signature")
	}

	block, _ := clearsign.Decode(signed)
	if block == nil {
		return errors.Wrap(errors.ErrSignatureInvalid, "no clear-signed block found")
	}

	if _, err = block.VerifySignature(keyring, nil); err != nil {
		return errors.Wrap(errors.ErrSignatureInvalid, err.Error())
	}

	manifest, err := os.ReadFile(manifestPath) //nolint:gosec // path comes from config or a flag
	if err != nil {
		return errors.Wrap(err, "failed to read manifest")
	}
	if !bytes.Equal(bytes.TrimSpace(block.Plaintext), bytes.TrimSpace(manifest)) {
		return errors.Wrap(errors.ErrSignatureInvalid, "signed content does not match manifest")
	}
	return nil
}

// readSigningKey loads the first private-key entity from an armored key
// file.
func readSigningKey(keyPath string) (*openpgp.Entity, error) {
	keyring, err := readKeyring(keyPath)
	if err != nil {
		return nil, err
	}
	for _, entity := range keyring {
		if entity.PrivateKey != nil {
			return entity, nil
		}
	}
	return nil, errors.Wrapf(errors.ErrSigningKeyMissing, "%s holds no private key", keyPath)
}

// readKeyring loads an armored keyring file.
func readKeyring(keyPath string) (openpgp.EntityList, error) {
	f, err := os.Open(keyPath) //nolint:gosec // key paths come from configuration
	if err != nil {
		return nil, errors.Wrapf(errors.ErrSigningKeyMissing, "cannot open %s", keyPath)
	}
	defer func() { _ = f.Close() }()

	keyring, err := openpgp.ReadArmoredKeyRing(f)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read key ring %s", keyPath)
	}
	return keyring, nil
}
