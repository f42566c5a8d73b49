package hash

import "golang.org/x/crypto/bcrypt"

// HashPassword derives a bcrypt hash with a fresh random salt. The only
// failure mode is the entropy source, which is fatal for the caller.
func HashPassword(password string) (string, error) {
	hashBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashBytes), nil
}

// CheckPassword reports whether password matches the stored hash. The
// comparison inside bcrypt is constant-time; mismatches never error.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
