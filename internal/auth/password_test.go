package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret!pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret!pass", hash)

	assert.NoError(t, CheckPassword(hash, "s3cret!pass"))
	assert.Error(t, CheckPassword(hash, "wrong-pass"))
}

func TestIsStrongPassword(t *testing.T) {
	testCases := []struct {
		name     string
		password string
		want     bool
	}{
		{name: "valid", password: "abcdef1!", want: true},
		{name: "too short", password: "ab1!", want: false},
		{name: "no digit", password: "abcdefg!", want: false},
		{name: "no special", password: "abcdefg1", want: false},
		{name: "long with both", password: "correct horse 9?", want: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsStrongPassword(tc.password))
		})
	}
}

func TestGenerateTempPassword(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		pw := GenerateTempPassword()
		assert.Len(t, pw, tempPasswordLength)
		assert.True(t, IsStrongPassword(pw), "generated password %q must pass the strength check", pw)
		seen[pw] = true
	}
	assert.Greater(t, len(seen), 1, "passwords must not repeat")
}
