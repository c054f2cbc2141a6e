package lang

import (
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// Placeholder tokens are delimited by private-use code points, which survive
// HTML escaping and never occur in ordinary text.
const (
	tokenOpen  = "\uE000"
	tokenClose = "\uE001"
)

// registry maps placeholder tokens to raw-HTML payloads for one render.
//
// Payloads are registered during the tree walk and substituted in a single
// pass afterward, so raw HTML is never escaped or re-parsed.
type registry struct {
	payload  map[string]string
	order    []string
	expanded bool
}

func newRegistry() *registry {
	return &registry{payload: make(map[string]string)}
}

// register stores html under a fresh token and returns the token.
func (r *registry) register(html string) string {
	if r.expanded {
		panic(ErrRegistryConsumed.With(slog.Int("placeholders", len(r.order))))
	}

	token := tokenOpen + uuid.NewString() + tokenClose
	r.payload[token] = html
	r.order = append(r.order, token)

	return token
}

// Len returns the number of registered payloads.
func (r *registry) Len() int { return len(r.order) }

// expand replaces every registered token in s with its payload.
// A registry can be expanded exactly once.
func (r *registry) expand(s string) string {
	if r.expanded {
		panic(ErrRegistryConsumed.With(slog.Int("placeholders", len(r.order))))
	}

	r.expanded = true

	if len(r.order) == 0 {
		return s
	}

	pairs := make([]string, 0, 2*len(r.order))
	for _, token := range r.order {
		pairs = append(pairs, token, r.payload[token])
	}

	return strings.NewReplacer(pairs...).Replace(s)
}
