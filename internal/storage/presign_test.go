package storage

import (
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestPresignedURLShape(t *testing.T) {
	p := NewPresigner("https://media.example.com", "event-images", "secret", 15)
	p.now = fixedClock(time.Unix(1_700_000_000, 0))

	raw := p.PresignedURL("events/42/banner.png")
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("issued URL does not parse: %v", err)
	}
	if u.Path != "/event-images/events/42/banner.png" {
		t.Errorf("unexpected path %q", u.Path)
	}
	exp, err := strconv.ParseInt(u.Query().Get("expires"), 10, 64)
	if err != nil {
		t.Fatalf("expires is not numeric: %v", err)
	}
	if want := int64(1_700_000_000 + 15*60); exp != want {
		t.Errorf("expires = %d, want %d", exp, want)
	}
	if u.Query().Get("signature") == "" {
		t.Error("signature missing from URL")
	}
}

func TestPresignedURLEmptyKey(t *testing.T) {
	p := NewPresigner("https://media.example.com", "event-images", "secret", 15)
	if got := p.PresignedURL(""); got != "" {
		t.Errorf("empty object key should yield empty URL, got %q", got)
	}
}

func TestVerifyAcceptsOwnSignature(t *testing.T) {
	p := NewPresigner("https://media.example.com", "event-images", "secret", 15)
	p.now = fixedClock(time.Unix(1_700_000_000, 0))

	raw := p.PresignedURL("a/b.png")
	u, _ := url.Parse(raw)
	exp, _ := strconv.ParseInt(u.Query().Get("expires"), 10, 64)
	if !p.Verify(u.Path, exp, u.Query().Get("signature")) {
		t.Error("presigner rejects a URL it just issued")
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	p := NewPresigner("https://media.example.com", "event-images", "secret", 15)
	p.now = fixedClock(time.Unix(1_700_000_000, 0))
	raw := p.PresignedURL("a/b.png")
	u, _ := url.Parse(raw)
	exp, _ := strconv.ParseInt(u.Query().Get("expires"), 10, 64)
	sig := u.Query().Get("signature")

	// Jump past the expiry.
	p.now = fixedClock(time.Unix(1_700_000_000, 0).Add(16 * time.Minute))
	if p.Verify(u.Path, exp, sig) {
		t.Error("expired URL passed verification")
	}
}

func TestVerifyRejectsTamperedPath(t *testing.T) {
	p := NewPresigner("https://media.example.com", "event-images", "secret", 15)
	p.now = fixedClock(time.Unix(1_700_000_000, 0))
	raw := p.PresignedURL("a/b.png")
	u, _ := url.Parse(raw)
	exp, _ := strconv.ParseInt(u.Query().Get("expires"), 10, 64)
	sig := u.Query().Get("signature")

	other := strings.Replace(u.Path, "b.png", "c.png", 1)
	if p.Verify(other, exp, sig) {
		t.Error("signature accepted for a different object")
	}
}

func TestDifferentKeysProduceDifferentSignatures(t *testing.T) {
	a := NewPresigner("https://media.example.com", "event-images", "key-a", 15)
	b := NewPresigner("https://media.example.com", "event-images", "key-b", 15)
	clock := fixedClock(time.Unix(1_700_000_000, 0))
	a.now, b.now = clock, clock

	if a.PresignedURL("x.png") == b.PresignedURL("x.png") {
		t.Error("signing key does not influence the signature")
	}
}
