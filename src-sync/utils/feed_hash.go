package utils

import (
	"crypto/sha256"
	"fmt"
)

// FeedHash fingerprints a fetched feed body so runs can be compared in the
// sync history.
func FeedHash(body []byte) string {
	h := sha256.New()
	h.Write(body)
	return fmt.Sprintf("%x", h.Sum(nil))
}
