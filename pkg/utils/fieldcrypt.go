package utils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"regexp"
	"strings"

	"github.com/manishhsuthar/EduConnect/internal/config"
)

// Sensitive profile fields are encrypted at rest with AES-256-GCM.
// Stored values carry the "enc:" prefix over base64(nonce|tag|ciphertext).
// Without a configured key both directions pass values through unchanged,
// so deployments can run unencrypted and turn the key on later.
const encPrefix = "enc:"

const (
	fieldNonceLength = 12
	fieldTagLength   = 16
)

var hexKeyPattern = regexp.MustCompile(`^[0-9a-fA-F]{64}$`)

// fieldKey resolves the configured encryption key. Accepts a 32-byte key
// as 64 hex chars or base64; anything else disables encryption.
func fieldKey() []byte {
	if config.AppConfig == nil {
		return nil
	}
	raw := config.AppConfig.FieldEncryptionKey
	if raw == "" {
		return nil
	}
	if hexKeyPattern.MatchString(raw) {
		key, err := hex.DecodeString(raw)
		if err != nil {
			return nil
		}
		return key
	}
	key, err := base64.StdEncoding.DecodeString(raw)
	if err != nil || len(key) != 32 {
		return nil
	}
	return key
}

// IsEncryptedField reports whether the value is a stored ciphertext.
func IsEncryptedField(value string) bool {
	return strings.HasPrefix(value, encPrefix)
}

// EncryptField encrypts a field value for storage. Empty values, values
// already encrypted, and missing-key deployments pass through unchanged.
func EncryptField(plain string) (string, error) {
	if plain == "" || IsEncryptedField(plain) {
		return plain, nil
	}
	key := fieldKey()
	if key == nil {
		return plain, nil
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, fieldNonceLength)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	sealed := gcm.Seal(nil, nonce, []byte(plain), nil)
	ciphertext := sealed[:len(sealed)-fieldTagLength]
	tag := sealed[len(sealed)-fieldTagLength:]

	payload := make([]byte, 0, fieldNonceLength+fieldTagLength+len(ciphertext))
	payload = append(payload, nonce...)
	payload = append(payload, tag...)
	payload = append(payload, ciphertext...)

	return encPrefix + base64.StdEncoding.EncodeToString(payload), nil
}

// DecryptField reverses EncryptField. Unencrypted values pass through;
// so do ciphertexts when no key is configured, keeping reads non-fatal
// if the key is removed after data was written. A tampered ciphertext
// fails authentication and returns an error.
func DecryptField(stored string) (string, error) {
	if !IsEncryptedField(stored) {
		return stored, nil
	}
	key := fieldKey()
	if key == nil {
		return stored, nil
	}

	payload, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(stored, encPrefix))
	if err != nil {
		return "", err
	}
	if len(payload) < fieldNonceLength+fieldTagLength {
		return "", errors.New("encrypted field payload too short")
	}

	nonce := payload[:fieldNonceLength]
	tag := payload[fieldNonceLength : fieldNonceLength+fieldTagLength]
	ciphertext := payload[fieldNonceLength+fieldTagLength:]

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plain, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}
