package domain

import (
	"strings"
	"testing"
)

func TestMintAPIKey(t *testing.T) {
	secret, hash, prefix, err := MintAPIKey()
	if err != nil {
		t.Fatalf("MintAPIKey: %v", err)
	}

	if !strings.HasPrefix(secret, "wsc_") {
		t.Errorf("secret %q missing wsc_ prefix", secret)
	}
	if len(secret) != 4+64 {
		t.Errorf("secret length = %d, want %d", len(secret), 4+64)
	}
	if prefix != secret[:12] {
		t.Errorf("prefix %q is not the first 12 characters of the secret", prefix)
	}
	if hash != HashAPIKey(secret) {
		t.Errorf("returned hash does not match HashAPIKey(secret)")
	}
	if hash == secret || strings.Contains(hash, secret[4:20]) {
		t.Errorf("hash leaks secret material")
	}

	again, _, _, err := MintAPIKey()
	if err != nil {
		t.Fatalf("MintAPIKey: %v", err)
	}
	if again == secret {
		t.Error("two minted secrets are identical")
	}
}

func TestHashAPIKeyIsStable(t *testing.T) {
	if HashAPIKey("wsc_abc") != HashAPIKey("wsc_abc") {
		t.Error("same secret hashed to different values")
	}
	if HashAPIKey("wsc_abc") == HashAPIKey("wsc_abd") {
		t.Error("different secrets hashed to the same value")
	}
}
