package directory

import (
	"crypto/md5"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"strings"
)

// HashPassword computes a userPassword value for the given algorithm:
// SSHA (salted SHA-1, the default), SHA, MD5, or PLAIN (no scheme prefix).
func HashPassword(password, algorithm string) (string, error) {
	switch strings.ToUpper(algorithm) {
	case "", "SSHA":
		salt := make([]byte, 4)
		if _, err := rand.Read(salt); err != nil {
			return "", fmt.Errorf("generating salt: %w", err)
		}
		return sshaHash(password, salt), nil
	case "SHA":
		sum := sha1.Sum([]byte(password))
		return "{SHA}" + base64.StdEncoding.EncodeToString(sum[:]), nil
	case "MD5":
		sum := md5.Sum([]byte(password))
		return "{MD5}" + base64.StdEncoding.EncodeToString(sum[:]), nil
	case "PLAIN":
		return password, nil
	default:
		return "", fmt.Errorf("unsupported password hash algorithm %q", algorithm)
	}
}

func sshaHash(password string, salt []byte) string {
	sum := sha1.Sum(append([]byte(password), salt...))
	return "{SSHA}" + base64.StdEncoding.EncodeToString(append(sum[:], salt...))
}

// VerifySSHA checks a password against an {SSHA} hash string.
func VerifySSHA(password, hash string) bool {
	if !strings.HasPrefix(hash, "{SSHA}") {
		return false
	}
	data, err := base64.StdEncoding.DecodeString(hash[6:])
	if err != nil || len(data) <= sha1.Size {
		return false
	}
	return sshaHash(password, data[sha1.Size:]) == hash
}
