package config

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordConfig holds configuration for password hashing and verification.
type PasswordConfig struct {
	BcryptCost int
	Pepper     string
}

// Password builds the hashing settings from the auth section.
func (c *Config) Password() (*PasswordConfig, error) {
	pc := &PasswordConfig{
		BcryptCost: c.Auth.BcryptCost,
		Pepper:     c.Auth.PasswordPepper,
	}
	if err := pc.normalize(); err != nil {
		return nil, err
	}
	return pc, nil
}

func (p *PasswordConfig) normalize() error {
	if p.BcryptCost < 10 || p.BcryptCost > 14 {
		return fmt.Errorf("bcrypt cost out of range: %d (must be 10-14)", p.BcryptCost)
	}
	return nil
}

func (p *PasswordConfig) peppered(pw string) []byte {
	return []byte(pw + p.Pepper)
}

// HashPassword hashes a password using bcrypt with the optional pepper appended.
func (p *PasswordConfig) HashPassword(pw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(p.peppered(pw), p.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether pw matches storedHash.
func (p *PasswordConfig) VerifyPassword(pw, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), p.peppered(pw)) == nil
}
