package auth

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the work factor for stored password hashes
const BcryptCost = 12

// dummyHashes holds one throwaway hash per work factor. A lookup miss is
// compared against the hash whose cost matches the stored hashes, so it costs
// the same as a wrong password.
var dummyHashes sync.Map

func dummyHash(cost int) string {
	if h, ok := dummyHashes.Load(cost); ok {
		return h.(string)
	}
	h, _ := dummyHashes.LoadOrStore(cost, mustHash("sims-dummy-password", cost))
	return h.(string)
}

// HashPassword hashes a password with BcryptCost
func HashPassword(password string) (string, error) {
	return HashPasswordWithCost(password, BcryptCost)
}

// HashPasswordWithCost lets tests and seeding use a cheaper cost
func HashPasswordWithCost(password string, cost int) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// CheckPassword reports whether password matches hashedPassword
func CheckPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}

// BurnPasswordCheck performs a comparison whose result is discarded, at the
// default BcryptCost.
func BurnPasswordCheck(password string) {
	BurnPasswordCheckWithCost(password, BcryptCost)
}

// BurnPasswordCheckWithCost is BurnPasswordCheck for accounts hashed with cost
func BurnPasswordCheckWithCost(password string, cost int) {
	_ = CheckPassword(dummyHash(cost), password)
}

func mustHash(password string, cost int) string {
	h, err := HashPasswordWithCost(password, cost)
	if err != nil {
		panic(err)
	}
	return h
}
