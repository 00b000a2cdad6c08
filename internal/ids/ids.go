// Package ids generates the short opaque tokens used as line item identifiers.
package ids

import (
	"strings"

	"github.com/google/uuid"
)

// DefaultLength matches the six character ids handed out for line items
const DefaultLength = 6

// maxLength is the number of hex digits in a UUID
const maxLength = 32

// New returns length lowercase hex characters taken from a random UUID.
// Lengths outside (0, 32] are clamped.
func New(length int) string {
	if length <= 0 {
		length = DefaultLength
	}
	if length > maxLength {
		length = maxLength
	}
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:length]
}

// Generator hands out ids that do not collide with a caller supplied set
type Generator struct {
	length int
	source func(int) string
}

// Option configures a Generator
type Option func(*Generator)

// WithLength sets the token length
func WithLength(n int) Option {
	return func(g *Generator) {
		g.length = n
	}
}

// WithSource replaces the random source, mainly for tests
func WithSource(fn func(int) string) Option {
	return func(g *Generator) {
		g.source = fn
	}
}

// NewGenerator creates a generator with defaults
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		length: DefaultLength,
		source: New,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Next returns a token for which taken reports false.
// A nil taken accepts the first token.
func (g *Generator) Next(taken func(string) bool) string {
	for {
		id := g.source(g.length)
		if taken == nil || !taken(id) {
			return id
		}
	}
}
