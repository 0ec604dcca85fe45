package managers

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt work factor for stored password hashes.
const PasswordCost = 10

// ErrPasswordTooLong is returned by Hash for inputs bcrypt would silently truncate.
var ErrPasswordTooLong = bcrypt.ErrPasswordTooLong

type CredentialMgr interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

type CredentialManager struct {
	cost int
}

func NewCredentialManager() CredentialMgr {
	return &CredentialManager{cost: PasswordCost}
}

func (cm *CredentialManager) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), cm.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

// placeholderHash is compared against when no stored hash exists, so an unknown
// username costs the same bcrypt round as a wrong password.
func placeholderHash() []byte {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("tamuroo-placeholder"), PasswordCost)
	})
	return dummyHash
}

// Verify compares in constant time. A missing hash never matches.
func (cm *CredentialManager) Verify(plaintext, hash string) bool {
	if hash == "" {
		_ = bcrypt.CompareHashAndPassword(placeholderHash(), []byte(plaintext))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
