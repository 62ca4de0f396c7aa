package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/vigil/pkg/domain"
	"github.com/aretw0/vigil/pkg/ports"
)

// envelopePrefix marks an encrypted reason.
const envelopePrefix = "enc:v1:"

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys is a list of old keys to try when decryption fails.
	// This enables zero-downtime key rotation.
	FallbackKeys [][]byte
}

// sealed is what gets encrypted: the free-text fields of a verdict.
type sealed struct {
	Reason string `json:"reason,omitempty"`
	Source string `json:"source,omitempty"`
}

type encryptionMiddleware struct {
	next   ports.VerdictStore
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that encrypts the reason and source
// of verdicts using AES-GCM. Result, node and timing fields stay readable so stores
// can still be listed and monitored.
func NewEncryptionMiddleware(config EncryptionConfig) Middleware {
	if len(config.ActiveKey) != 32 {
		panic("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.VerdictStore) ports.VerdictStore {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}
}

func (m *encryptionMiddleware) Save(ctx context.Context, v domain.Verdict) error {
	plainText, err := json.Marshal(sealed{Reason: v.Reason, Source: v.Source})
	if err != nil {
		return fmt.Errorf("failed to marshal verdict: %w", err)
	}

	ciphertext, err := encrypt(plainText, m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt verdict: %w", err)
	}

	v.Reason = envelopePrefix + base64.StdEncoding.EncodeToString(ciphertext)
	v.Source = ""
	return m.next.Save(ctx, v)
}

func (m *encryptionMiddleware) Load(ctx context.Context, id string) (domain.Verdict, error) {
	v, err := m.next.Load(ctx, id)
	if err != nil {
		return domain.Verdict{}, err
	}
	return m.open(v)
}

func (m *encryptionMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}

func (m *encryptionMiddleware) List(ctx context.Context) ([]domain.Verdict, error) {
	all, err := m.next.List(ctx)
	if err != nil {
		return nil, err
	}
	for i, v := range all {
		if all[i], err = m.open(v); err != nil {
			return nil, err
		}
	}
	return all, nil
}

func (m *encryptionMiddleware) open(v domain.Verdict) (domain.Verdict, error) {
	encoded, ok := strings.CutPrefix(v.Reason, envelopePrefix)
	if !ok {
		// Fail secure: with encryption configured, plain verdicts are not trusted.
		return domain.Verdict{}, fmt.Errorf("verdict %s is missing its encrypted envelope", v.ID)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return domain.Verdict{}, fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}

	plainText, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return domain.Verdict{}, fmt.Errorf("failed to decrypt verdict %s: %w", v.ID, err)
	}

	var s sealed
	if err := json.Unmarshal(plainText, &s); err != nil {
		return domain.Verdict{}, fmt.Errorf("failed to unmarshal decrypted verdict: %w", err)
	}
	v.Reason = s.Reason
	v.Source = s.Source
	return v, nil
}

// Helpers

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}
	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}
	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce := ciphertext[:gcm.NonceSize()]
	return gcm.Open(nil, nonce, ciphertext[gcm.NonceSize():], nil)
}

// ParseKey decodes a base64 AES-256 key, as found in VIGIL_ENCRYPTION_KEY.
func ParseKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("encryption key is not base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("encryption key must be 32 bytes, got %d", len(key))
	}
	return key, nil
}
