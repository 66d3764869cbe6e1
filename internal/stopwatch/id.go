package stopwatch

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// Identifier prefixes.
const (
	StopwatchIDPrefix = "sw_"
	SessionIDPrefix   = "ses_"
)

// NewID returns prefix followed by a ULID stamped with t.
func NewID(prefix string, t time.Time) string {
	return prefix + ulid.MustNew(ulid.Timestamp(t), rand.Reader).String()
}
