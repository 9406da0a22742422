package password

import "strings"

// FakeInsecureHasher implements Hasher with zero crypto overhead.
// Stores passwords as "$fake$<plaintext>" and verifies by string comparison.
// For use in tests only. Never use it in production.
type FakeInsecureHasher struct{}

func (FakeInsecureHasher) Hash(plain string) (string, error) {
	return "$fake$" + plain, nil
}

func (FakeInsecureHasher) Verify(plain, hash string) bool {
	return strings.HasPrefix(hash, "$fake$") && strings.TrimPrefix(hash, "$fake$") == plain
}
