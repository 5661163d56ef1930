// Package storage exchanges stored object keys for time-limited signed
// retrieval URLs.  Raw keys never leave the API; every response field
// carrying an event image goes through the presigner first.
package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Presigner issues signed GET URLs for objects in a bucket.  The
// signature covers the object path and the expiry timestamp with
// HMAC-SHA256, so a URL cannot be replayed after it expires or be
// rewritten to point at another object.  All settings are injected;
// nothing is read from package state.
type Presigner struct {
	endpoint string        // base URL of the object store, no trailing slash
	bucket   string        // bucket holding the objects
	key      []byte        // HMAC signing key
	ttl      time.Duration // lifetime of issued URLs
	now      func() time.Time
}

// NewPresigner constructs a Presigner.  ttlMin of zero falls back to
// 15 minutes.
func NewPresigner(endpoint, bucket, signingKey string, ttlMin int) *Presigner {
	if ttlMin <= 0 {
		ttlMin = 15
	}
	return &Presigner{
		endpoint: strings.TrimRight(endpoint, "/"),
		bucket:   bucket,
		key:      []byte(signingKey),
		ttl:      time.Duration(ttlMin) * time.Minute,
		now:      time.Now,
	}
}

// PresignedURL returns a signed GET URL for the object, valid until the
// configured TTL elapses.  An empty object key yields an empty string
// so callers can pass through events without an image.
func (p *Presigner) PresignedURL(objectKey string) string {
	if objectKey == "" {
		return ""
	}
	expires := p.now().UTC().Add(p.ttl).Unix()
	path := "/" + p.bucket + "/" + strings.TrimLeft(objectKey, "/")
	sig := p.sign(path, expires)

	q := url.Values{}
	q.Set("expires", strconv.FormatInt(expires, 10))
	q.Set("signature", sig)
	return p.endpoint + path + "?" + q.Encode()
}

// Verify reports whether a signature matches the object path and
// expiry, and that the expiry has not passed.  The media proxy serving
// the bucket uses this to validate incoming URLs.
func (p *Presigner) Verify(path string, expires int64, signature string) bool {
	if p.now().UTC().Unix() > expires {
		return false
	}
	want := p.sign(path, expires)
	return hmac.Equal([]byte(want), []byte(signature))
}

// sign computes the hex HMAC-SHA256 over "GET\n<path>\n<expires>".
func (p *Presigner) sign(path string, expires int64) string {
	mac := hmac.New(sha256.New, p.key)
	fmt.Fprintf(mac, "GET\n%s\n%d", path, expires)
	return hex.EncodeToString(mac.Sum(nil))
}
