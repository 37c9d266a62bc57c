package utils

import "golang.org/x/crypto/bcrypt"

// HashConnectCode returns the bcrypt hash of a partner connect code using
// the given cost.  The admin tool that provisions partners stores only the
// hash; the plain code is handed to the partner out of band.
func HashConnectCode(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyConnectCode safely compares a stored bcrypt hash and a plain
// connect code.
func VerifyConnectCode(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
