// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package backup

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lowIterations(t *testing.T) {
	t.Helper()
	prev := SealIterations
	SealIterations = 1000
	t.Cleanup(func() { SealIterations = prev })
}

func TestSealUnseal(t *testing.T) {
	lowIterations(t)
	plain := []byte(`{"products":[{"id":1}],"version":"1.0"}`)

	sealedData, err := Seal(plain, "hunter2")
	require.NoError(t, err)
	assert.True(t, IsSealed(sealedData))
	assert.False(t, IsSealed(plain))
	assert.NotContains(t, string(sealedData), `"products"`)

	var env sealed
	require.NoError(t, json.Unmarshal(sealedData, &env))
	assert.Equal(t, "pbkdf2-sha512", env.Meta.KDF)
	assert.Equal(t, 1000, env.Meta.Iterations)
	assert.Equal(t, 32, env.Meta.KeyLength)

	got, err := Unseal(sealedData, "hunter2")
	require.NoError(t, err)
	assert.Equal(t, plain, got)

	_, err = Unseal(sealedData, "wrong")
	assert.ErrorIs(t, err, ErrBadPassphrase)
}

func TestSeal_EmptyPassphrase(t *testing.T) {
	_, err := Seal([]byte("x"), "")
	assert.Error(t, err)
}

func TestUnseal_Malformed(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"not json", `{`},
		{"wrong kdf", `{"meta":{"kdf":"scrypt","salt":"","iterations":1,"key_length":32},"encrypted_data":""}`},
		{"bad params", `{"meta":{"kdf":"pbkdf2-sha512","salt":"","iterations":0,"key_length":32},"encrypted_data":""}`},
		{"bad base64", `{"meta":{"kdf":"pbkdf2-sha512","salt":"AAAA","iterations":1,"key_length":32},"encrypted_data":"!!"}`},
		{"too short", `{"meta":{"kdf":"pbkdf2-sha512","salt":"AAAA","iterations":1,"key_length":32},"encrypted_data":"AAAA"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unseal([]byte(tt.in), "pw")
			assert.Error(t, err)
		})
	}
}
