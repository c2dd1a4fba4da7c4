// Package secrets implements the reversible obfuscation applied to
// credentials stored in configuration documents. The transform is not
// encryption: it exists so plaintext never appears verbatim in the XML,
// and wsadmin applies the identical transform on its side.
package secrets

import (
	"encoding/base64"
	"strings"

	"github.com/wasconverge/wasconverge/internal/domain"
)

// Prefix tags obfuscated values in stored documents.
const Prefix = "{xor}"

// xorKey is 0x5F, the ASCII underscore. XOR with a fixed single-byte key
// makes the transform self-inverse.
const xorKey = 0x5F

func xorBytes(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		out[i] = c ^ xorKey
	}
	return out
}

// Obfuscate encodes plaintext into its stored form:
// "{xor}" + base64(bytes XOR 0x5F).
func Obfuscate(plaintext string) string {
	return Prefix + base64.StdEncoding.EncodeToString(xorBytes([]byte(plaintext)))
}

// Deobfuscate recovers the plaintext from a stored value. It fails with
// a domain.MalformedSecretError when the value lacks the {xor} prefix or
// the payload is not valid base64.
func Deobfuscate(stored string) (string, error) {
	payload, ok := strings.CutPrefix(stored, Prefix)
	if !ok {
		return "", &domain.MalformedSecretError{Reason: "missing {xor} prefix"}
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", &domain.MalformedSecretError{Reason: "payload is not valid base64"}
	}
	return string(xorBytes(raw)), nil
}
