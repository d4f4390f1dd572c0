package keys

import (
	"crypto/sha256"
	"strings"
	"testing"
)

func TestKeyPairFromSecret(t *testing.T) {
	kp := KeyPairFromSecret("robust swift grocery peasant forget share enable convince deputy road keep cheap")
	otherKP := KeyPairFromSecret("robust swift grocery peasant forget share enable convince deputy road keep cheap")
	if kp.PublicKeyHex() != otherKP.PublicKeyHex() {
		t.Fatalf("KeyPairFromSecret is not deterministic")
	}
	if len(kp.PublicKey) != PublicKeySize {
		t.Fatalf("unexpected public key size %d", len(kp.PublicKey))
	}

	hash := sha256.Sum256([]byte("message"))
	signature := kp.Sign(hash[:])
	if !Verify(hash[:], signature, kp.PublicKey) {
		t.Fatalf("Verify rejected a valid signature")
	}

	other := KeyPairFromSecret("another secret")
	if Verify(hash[:], signature, other.PublicKey) {
		t.Fatalf("Verify accepted a signature by another key")
	}
	if Verify(hash[:], signature[:10], kp.PublicKey) {
		t.Fatalf("Verify accepted a truncated signature")
	}
}

func TestMnemonic(t *testing.T) {
	secret, err := GenerateSecret()
	if err != nil {
		t.Fatalf("GenerateSecret: %+v", err)
	}
	if len(strings.Fields(secret)) != 12 {
		t.Fatalf("GenerateSecret returned %d words, want 12", len(strings.Fields(secret)))
	}
	if err := ValidateMnemonic(secret); err != nil {
		t.Fatalf("ValidateMnemonic rejected a generated secret: %+v", err)
	}
	if err := ValidateMnemonic("definitely not a mnemonic"); err == nil {
		t.Fatalf("ValidateMnemonic accepted garbage")
	}
}

func TestParsePublicKey(t *testing.T) {
	kp := KeyPairFromSecret("secret")
	publicKey, err := ParsePublicKey(kp.PublicKeyHex())
	if err != nil {
		t.Fatalf("ParsePublicKey: %+v", err)
	}
	if string(publicKey) != string(kp.PublicKey) {
		t.Fatalf("ParsePublicKey returned a different key")
	}
	if _, err := ParsePublicKey("abcd"); err == nil {
		t.Fatalf("ParsePublicKey accepted a short key")
	}
	if _, err := ParsePublicKey("zz"); err == nil {
		t.Fatalf("ParsePublicKey accepted non-hex input")
	}
}
