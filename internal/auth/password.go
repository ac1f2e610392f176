package auth

import (
	"crypto/rand"
	"math/big"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// StrengthMessage is returned whenever a password fails the strength check.
const StrengthMessage = "Password must be at least 8 characters long and contain at least 1 number and 1 special character"

const (
	tempPasswordLength = 12
	specialChars       = "!@#$%^&*"
	strengthSpecials   = `!@#$%^&*()_+-=[]{};':"\|,.<>/?`
	alphanumeric       = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// HashPassword hashes a plaintext password using bcrypt with DefaultCost.
func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

// CheckPassword compares a bcrypt hash with a candidate plaintext password.
func CheckPassword(hash, pw string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw))
}

// IsStrongPassword reports whether pw is at least 8 characters and contains at
// least one digit and one special character.
func IsStrongPassword(pw string) bool {
	if len(pw) < 8 {
		return false
	}
	if !strings.ContainsAny(pw, "0123456789") {
		return false
	}
	return strings.ContainsAny(pw, strengthSpecials)
}

// GenerateTempPassword produces a 12-character password that satisfies
// IsStrongPassword by construction: random alphanumeric filler plus one forced
// digit and one forced special character, shuffled.
func GenerateTempPassword() string {
	buf := make([]byte, 0, tempPasswordLength)
	for i := 0; i < tempPasswordLength-2; i++ {
		buf = append(buf, alphanumeric[randInt(len(alphanumeric))])
	}
	buf = append(buf, byte('1'+randInt(9)))
	buf = append(buf, specialChars[randInt(len(specialChars))])
	for i := len(buf) - 1; i > 0; i-- {
		j := randInt(i + 1)
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf)
}

func randInt(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic(err)
	}
	return int(v.Int64())
}
