package credentials

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// InviteAlphabet holds 32 symbols with the look-alikes (0/O, 1/I) removed.
const InviteAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const inviteDigits = "23456789"

const (
	// InviteCodeLength is the length of a normal invite code.
	InviteCodeLength = 6
	// MaxInviteAttempts bounds the uniqueness retries before the fallback.
	MaxInviteAttempts = 10
)

// CodeExists reports whether an invite code is already assigned.
type CodeExists func(ctx context.Context, code string) (bool, error)

// GenerateInviteCode draws a code and retries while exists reports a clash.
// After MaxInviteAttempts clashes it appends a random digit to the last
// candidate and returns it unchecked, so generation always terminates.
func GenerateInviteCode(ctx context.Context, exists CodeExists) (string, error) {
	var code string
	for i := 0; i < MaxInviteAttempts; i++ {
		candidate, err := randomString(InviteAlphabet, InviteCodeLength)
		if err != nil {
			return "", err
		}
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check invite code uniqueness: %w", err)
		}
		if !taken {
			return candidate, nil
		}
		code = candidate
	}

	digit, err := randomString(inviteDigits, 1)
	if err != nil {
		return "", err
	}
	return code + digit, nil
}

// NormalizeInviteCode trims and upper-cases user input.
func NormalizeInviteCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsWellFormedInviteCode checks length (6, or 7 for fallback codes) and alphabet.
func IsWellFormedInviteCode(code string) bool {
	if len(code) != InviteCodeLength && len(code) != InviteCodeLength+1 {
		return false
	}
	for _, r := range code {
		if !strings.ContainsRune(InviteAlphabet, r) {
			return false
		}
	}
	return true
}

func randomString(alphabet string, n int) (string, error) {
	buf := make([]byte, n)
	max := big.NewInt(int64(len(alphabet)))
	for i := range buf {
		num, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = alphabet[num.Int64()]
	}
	return string(buf), nil
}
