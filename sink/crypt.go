package sink

import (
	"fmt"

	"filippo.io/age"
)

// GenerateIdentity creates a fresh X25519 key pair for artifact
// encryption. The identity string decrypts, the recipient string is what
// the sink configuration references.
func GenerateIdentity() (identity, recipient string, err error) {
	id, err := age.GenerateX25519Identity()
	if err != nil {
		return "", "", fmt.Errorf("age.GenerateX25519Identity: %w", err)
	}
	return id.String(), id.Recipient().String(), nil
}

// ParseRecipient resolves an encryption key reference from configuration.
func ParseRecipient(s string) (age.Recipient, error) {
	recipient, err := age.ParseX25519Recipient(s)
	if err != nil {
		return nil, fmt.Errorf("age.ParseX25519Recipient: %w", err)
	}
	return recipient, nil
}

// ParseIdentity resolves a decryption key, used by artifact verification.
func ParseIdentity(s string) (age.Identity, error) {
	identity, err := age.ParseX25519Identity(s)
	if err != nil {
		return nil, fmt.Errorf("age.ParseX25519Identity: %w", err)
	}
	return identity, nil
}
