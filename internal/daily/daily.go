// internal/daily/daily.go
//
// Daily challenge seeding. Every player gets the same game on a given UTC
// day because the seed is derived from the date and a server-side salt.

package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Seed returns a deterministic game seed for a date: the first 8 bytes of
// HMAC-SHA256(salt, YYYY-MM-DD) read as a big-endian integer.
func Seed(date time.Time, salt string) int64 {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	return int64(binary.BigEndian.Uint64(sum[:8]))
}
