package idempotency

import (
	"context"
	"time"
)

// Key is the caller-provided idempotency key (Idempotency-Key header).
type Key string

// MaxKeyLength bounds accepted Idempotency-Key header values.
const MaxKeyLength = 255

// Fingerprint identifies a request for idempotency purposes: key + route + request body hash.
// Route is an HTTP method + path template pair (e.g. "POST /greetings").
//
// A Fingerprint with an empty BodyHash addresses the key's metadata record, whose Body
// holds the body hash first seen with the key.
type Fingerprint struct {
	Key      Key
	Method   string
	Route    string
	BodyHash string
}

// Meta returns the metadata fingerprint for fp.
func (fp Fingerprint) Meta() Fingerprint {
	fp.BodyHash = ""
	return fp
}

// Record is the stored response we can replay for a duplicate request.
type Record struct {
	StatusCode  int
	ContentType string
	Body        []byte
	CreatedAt   time.Time
}

// Store persists idempotency records for replaying safe responses on retries.
type Store interface {
	Get(ctx context.Context, fp Fingerprint) (Record, bool, error)
	Put(ctx context.Context, fp Fingerprint, rec Record) error
}
