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

	"github.com/aretw0/weave/pkg/domain"
	"github.com/aretw0/weave/pkg/ports"
)

const (
	// SealedClass marks the single node of an encrypted envelope.
	SealedClass = "__Sealed__"

	sealedNode  = "__sealed__"
	sealedInput = "ciphertext"
)

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys is a list of old keys to try when decryption fails.
	// This enables zero-downtime key rotation.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	next   ports.PromptStore
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that encrypts prompts using
// AES-GCM. The store underneath only ever sees an envelope prompt holding
// one sealed node.
func NewEncryptionMiddleware(config EncryptionConfig) Middleware {
	if len(config.ActiveKey) != 32 {
		panic("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.PromptStore) ports.PromptStore {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}
}

func (m *encryptionMiddleware) Save(ctx context.Context, promptID string, p *domain.Prompt) error {
	plainText, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal prompt: %w", err)
	}

	ciphertext, err := encrypt(plainText, m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt prompt: %w", err)
	}

	// The envelope keeps the id so listings stay readable. Node names,
	// classes and literals are all hidden.
	envelope := domain.NewPrompt(p.ID)
	sealed := domain.NewNode(sealedNode, SealedClass)
	sealed.Set(sealedInput, domain.Literal(base64.StdEncoding.EncodeToString(ciphertext)))
	if err := envelope.Add(sealed); err != nil {
		return err
	}

	return m.next.Save(ctx, promptID, envelope)
}

func (m *encryptionMiddleware) Load(ctx context.Context, promptID string) (*domain.Prompt, error) {
	envelope, err := m.next.Load(ctx, promptID)
	if err != nil {
		return nil, err
	}

	// Fail secure: with encryption configured, a plain prompt is rejected.
	encryptedStr, ok := sealedPayload(envelope)
	if !ok {
		return nil, errors.New("prompt is missing encrypted data envelope")
	}

	ciphertext, err := base64.StdEncoding.DecodeString(encryptedStr)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}

	plainText, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt prompt: %w", err)
	}

	var p domain.Prompt
	if err := json.Unmarshal(plainText, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal decrypted prompt: %w", err)
	}
	return &p, nil
}

func (m *encryptionMiddleware) Delete(ctx context.Context, promptID string) error {
	return m.next.Delete(ctx, promptID)
}

func (m *encryptionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func sealedPayload(envelope *domain.Prompt) (string, bool) {
	if envelope == nil || envelope.Len() != 1 {
		return "", false
	}
	n, ok := envelope.Node(sealedNode)
	if !ok || n.Class != SealedClass {
		return "", false
	}
	s, ok := n.Inputs[sealedInput].Value.(string)
	return s, ok
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
	ciphertextBytes := ciphertext[gcm.NonceSize():]

	return gcm.Open(nil, nonce, ciphertextBytes, nil)
}
