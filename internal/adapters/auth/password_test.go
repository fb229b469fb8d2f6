package auth

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_GenerateSalt(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	hexRe := regexp.MustCompile(`^[0-9a-f]{64}$`)

	seen := map[string]bool{}
	for range 5 {
		salt, err := h.GenerateSalt()
		require.NoError(t, err)
		assert.Regexp(t, hexRe, salt)
		assert.False(t, seen[salt], "salt repeated")
		seen[salt] = true
	}
}

func TestBcryptHasher_Compare(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	salt, err := h.GenerateSalt()
	require.NoError(t, err)
	otherSalt, err := h.GenerateSalt()
	require.NoError(t, err)
	long := strings.Repeat("x", 100)

	hash, err := h.Hash(salt, "correct horse")
	require.NoError(t, err)
	longHash, err := h.Hash(salt, long)
	require.NoError(t, err)

	tests := []struct {
		name     string
		hash     string
		salt     string
		password string
		wantErr  bool
	}{
		{name: "match", hash: hash, salt: salt, password: "correct horse"},
		{name: "wrong password", hash: hash, salt: salt, password: "battery staple", wantErr: true},
		{name: "wrong salt", hash: hash, salt: otherSalt, password: "correct horse", wantErr: true},
		{name: "password over 72 bytes", hash: longHash, salt: salt, password: long},
		{name: "long password differs after 72 bytes", hash: longHash, salt: salt, password: long[:99] + "y", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h.Compare(tt.hash, tt.salt, tt.password)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
