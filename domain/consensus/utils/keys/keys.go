// Package keys wraps the ed25519 signature scheme used for transactions
// and blocks.
package keys

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/pkg/errors"
	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/ed25519"
)

// PublicKeySize is the size in bytes of a public key
const PublicKeySize = ed25519.PublicKeySize

// SignatureSize is the size in bytes of a signature
const SignatureSize = ed25519.SignatureSize

// KeyPair is an ed25519 signing key and its public key
type KeyPair struct {
	PublicKey  ed25519.PublicKey
	PrivateKey ed25519.PrivateKey
}

// KeyPairFromSecret derives the key pair whose seed is the sha256 digest
// of secret
func KeyPairFromSecret(secret string) *KeyPair {
	seed := sha256.Sum256([]byte(secret))
	privateKey := ed25519.NewKeyFromSeed(seed[:])
	return &KeyPair{
		PublicKey:  privateKey.Public().(ed25519.PublicKey),
		PrivateKey: privateKey,
	}
}

// PublicKeyHex returns the hex encoding of the key pair's public key
func (kp *KeyPair) PublicKeyHex() string {
	return hex.EncodeToString(kp.PublicKey)
}

// Sign signs hash with the key pair's private key
func (kp *KeyPair) Sign(hash []byte) []byte {
	return ed25519.Sign(kp.PrivateKey, hash)
}

// Verify returns whether signature is a valid signature of hash by publicKey
func Verify(hash []byte, signature []byte, publicKey []byte) bool {
	if len(publicKey) != PublicKeySize || len(signature) != SignatureSize {
		return false
	}
	return ed25519.Verify(publicKey, hash, signature)
}

// ValidateMnemonic returns an error if secret is not a valid BIP39 mnemonic
func ValidateMnemonic(secret string) error {
	if !bip39.IsMnemonicValid(secret) {
		return errors.New("secret is not a valid BIP39 mnemonic")
	}
	return nil
}

// GenerateSecret returns a new random 12 word BIP39 mnemonic
func GenerateSecret() (string, error) {
	entropy, err := bip39.NewEntropy(128)
	if err != nil {
		return "", errors.WithStack(err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", errors.WithStack(err)
	}
	return mnemonic, nil
}

// ParsePublicKey decodes a hex encoded public key
func ParsePublicKey(publicKeyHex string) ([]byte, error) {
	publicKey, err := hex.DecodeString(publicKeyHex)
	if err != nil {
		return nil, errors.Wrapf(err, "public key %s is not hex encoded", publicKeyHex)
	}
	if len(publicKey) != PublicKeySize {
		return nil, errors.Errorf("public key %s is %d bytes long, expected %d",
			publicKeyHex, len(publicKey), PublicKeySize)
	}
	return publicKey, nil
}
