package stats

import (
	"crypto/sha1"
	"encoding/hex"
)

// IdempotentID derives a stable trace identifier from the case key
// (time window + process) for records whose extraction stage did not
// assign one.
func IdempotentID(window, process string) string {
	sum := sha1.New()
	_, err := sum.Write([]byte(window + "#"))
	if err != nil {
		panic("problem generating hash")
	}
	_, err = sum.Write([]byte(process))
	if err != nil {
		panic("problem generating hash")
	}

	return hex.EncodeToString(sum.Sum(nil))
}
