// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package backup

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha512"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/tidwall/gjson"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/term"
)

// ErrBadPassphrase is returned when a sealed backup cannot be opened with the
// given passphrase.
var ErrBadPassphrase = errors.New("wrong passphrase or corrupted backup")

// SealIterations is the PBKDF2 iteration count for new sealed backups.
var SealIterations = 210_000

const (
	sealKDF       = "pbkdf2-sha512"
	sealKeyLength = 32
	sealSaltSize  = 16
)

type sealMeta struct {
	KDF        string `json:"kdf"`
	Salt       string `json:"salt"`
	Iterations int    `json:"iterations"`
	KeyLength  int    `json:"key_length"`
}

type sealed struct {
	Meta          sealMeta `json:"meta"`
	EncryptedData string   `json:"encrypted_data"`
}

// IsSealed reports whether data is a sealed backup envelope.
func IsSealed(data []byte) bool {
	return gjson.GetBytes(data, "encrypted_data").Exists()
}

// Seal encrypts plain with AES-256-GCM under a key derived from passphrase.
func Seal(plain []byte, passphrase string) ([]byte, error) {
	if passphrase == "" {
		return nil, errors.New("empty passphrase")
	}

	salt := make([]byte, sealSaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	key := pbkdf2.Key([]byte(passphrase), salt, SealIterations, sealKeyLength, sha512.New)

	aesGCM, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aesGCM.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	env := sealed{
		Meta: sealMeta{
			KDF:        sealKDF,
			Salt:       base64.StdEncoding.EncodeToString(salt),
			Iterations: SealIterations,
			KeyLength:  sealKeyLength,
		},
		EncryptedData: base64.StdEncoding.EncodeToString(aesGCM.Seal(nonce, nonce, plain, nil)),
	}
	return json.MarshalIndent(env, "", "  ")
}

// Unseal decrypts a sealed backup envelope.
func Unseal(data []byte, passphrase string) ([]byte, error) {
	var env sealed
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to parse sealed backup: %w", err)
	}
	if env.Meta.KDF != sealKDF {
		return nil, fmt.Errorf("unsupported key derivation %q", env.Meta.KDF)
	}
	if env.Meta.Iterations <= 0 || env.Meta.KeyLength != sealKeyLength {
		return nil, errors.New("invalid sealed backup parameters")
	}

	salt, err := base64.StdEncoding.DecodeString(env.Meta.Salt)
	if err != nil {
		return nil, fmt.Errorf("failed to decode salt: %w", err)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(env.EncryptedData)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64: %w", err)
	}

	key := pbkdf2.Key([]byte(passphrase), salt, env.Meta.Iterations, env.Meta.KeyLength, sha512.New)
	aesGCM, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonceSize := aesGCM.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, fmt.Errorf(
			"ciphertext too short: expected at least %d bytes, got %d",
			nonceSize,
			len(ciphertext),
		)
	}

	plain, err := aesGCM.Open(nil, ciphertext[:nonceSize], ciphertext[nonceSize:], nil)
	if err != nil {
		return nil, ErrBadPassphrase
	}
	return plain, nil
}

// PromptPassphrase reads a passphrase from the terminal without echo.
func PromptPassphrase(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("passphrase required but stdin is not a terminal")
	}
	fmt.Fprint(os.Stderr, prompt)
	defer fmt.Fprintln(os.Stderr)

	b, err := term.ReadPassword(fd)
	if err != nil {
		return "", fmt.Errorf("failed to read passphrase: %w", err)
	}
	return string(b), nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return aesGCM, nil
}
