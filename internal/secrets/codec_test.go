package secrets_test

import (
	"errors"
	"testing"

	"github.com/wasconverge/wasconverge/internal/domain"
	"github.com/wasconverge/wasconverge/internal/secrets"
)

func TestObfuscate_KnownValue(t *testing.T) {
	// The canonical example: "secret" stores as {xor}LDo8LTor.
	got := secrets.Obfuscate("secret")
	if got != "{xor}LDo8LTor" {
		t.Errorf("Obfuscate(secret) = %q, want {xor}LDo8LTor", got)
	}
}

func TestRoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"secret",
		"p@ssw0rd!",
		"with spaces and\ttabs",
		"unicode pässwörd",
		string([]byte{0x00, 0x5F, 0xFF, 0x10}),
	}

	for _, in := range inputs {
		stored := secrets.Obfuscate(in)
		out, err := secrets.Deobfuscate(stored)
		if err != nil {
			t.Fatalf("Deobfuscate(%q) failed: %v", stored, err)
		}
		if out != in {
			t.Errorf("round trip of %q: got %q", in, out)
		}
	}
}

func TestDeobfuscate_Malformed(t *testing.T) {
	tests := []struct {
		name   string
		stored string
	}{
		{"no prefix", "LDo8LTor"},
		{"wrong prefix", "{aes}LDo8LTor"},
		{"plaintext", "secret"},
		{"bad base64", "{xor}not*base64!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := secrets.Deobfuscate(tt.stored)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, domain.ErrMalformedSecret) {
				t.Errorf("expected ErrMalformedSecret, got %v", err)
			}
		})
	}
}
