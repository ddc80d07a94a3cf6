// Package token mints invitation tokens and their expiry.
package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"time"
)

// Size is the number of random bytes behind every token (256 bits).
const Size = 32

// DefaultTTL is how long an invitation stays redeemable.
const DefaultTTL = 7 * 24 * time.Hour

// EncodedLen is the length of a token string.
var EncodedLen = base64.RawURLEncoding.EncodedLen(Size)

// Generator produces URL-safe random tokens.
type Generator struct {
	random io.Reader
	ttl    time.Duration
}

type Option func(*Generator)

// WithTTL overrides DefaultTTL. Non-positive values are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(g *Generator) {
		if ttl > 0 {
			g.ttl = ttl
		}
	}
}

// WithRandom swaps the entropy source. Tests only.
func WithRandom(r io.Reader) Option {
	return func(g *Generator) {
		g.random = r
	}
}

func NewGenerator(opts ...Option) *Generator {
	g := &Generator{random: rand.Reader, ttl: DefaultTTL}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns a base64url token with no padding, usable as a URL path segment.
func (g *Generator) Generate() (string, error) {
	buf := make([]byte, Size)
	if _, err := io.ReadFull(g.random, buf); err != nil {
		return "", fmt.Errorf("could not generate invitation token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// ExpiresAt returns the expiry for a token minted at now.
func (g *Generator) ExpiresAt(now time.Time) time.Time {
	return now.Add(g.ttl)
}

// LooksValid reports whether s has the shape of a token this package mints. It is
// used to reject garbage before touching the store.
func LooksValid(s string) bool {
	if len(s) != EncodedLen {
		return false
	}
	_, err := base64.RawURLEncoding.DecodeString(s)
	return err == nil
}
