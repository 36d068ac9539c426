package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
)

// GenerateShortID returns an 8-hex-char identifier, used to name
// produced images in the shared output directory.
func GenerateShortID() string {
	b := make([]byte, 4)
	rand.Read(b)
	return fmt.Sprintf("%x", b)
}

// Fingerprint hashes the given files plus a mode tag into a stable
// cache key: identical inputs and options always produce the same key.
func Fingerprint(mode string, paths ...string) (string, error) {
	h := sha256.New()
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return "", err
		}
		if _, err := io.Copy(h, f); err != nil {
			f.Close()
			return "", err
		}
		f.Close()
		h.Write([]byte{0x1F})
	}
	h.Write([]byte(mode))
	return fmt.Sprintf("sha256:%x", h.Sum(nil)), nil
}
