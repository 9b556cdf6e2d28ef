// Package ticket produces the reporter-facing ticket codes, e.g. RPT-20260301-7QX2.
//
// The random suffix space is small; global uniqueness is left to the store's
// unique constraint and callers retry NextAt on a collision.
package ticket

import (
	"crypto/rand"
	"fmt"
	"io"
	"regexp"
	"time"

	"campusreport/backend/internal/config"
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Pattern matches a well-formed ticket code.
var Pattern = regexp.MustCompile(`^RPT-\d{8}-[A-Z0-9]{4}$`)

// Generator builds ticket codes from a creation date and a random suffix.
type Generator struct {
	Prefix       string
	SuffixLength int
	Random       io.Reader
}

// NewGenerator returns a generator drawing from crypto/rand.
func NewGenerator() *Generator {
	return &Generator{
		Prefix:       config.TicketPrefix,
		SuffixLength: config.TicketSuffixLength,
		Random:       rand.Reader,
	}
}

// NextAt returns a fresh ticket code dated at the UTC day of t.
func (g *Generator) NextAt(t time.Time) (string, error) {
	suffix, err := g.suffix()
	if err != nil {
		return "", fmt.Errorf("ticket suffix: %w", err)
	}
	return g.Prefix + t.UTC().Format("20060102") + "-" + suffix, nil
}

// suffix draws SuffixLength characters from alphabet, rejecting bytes
// that would bias the distribution.
func (g *Generator) suffix() (string, error) {
	const limit = 256 - 256%len(alphabet)

	out := make([]byte, 0, g.SuffixLength)
	buf := make([]byte, g.SuffixLength*2)
	for len(out) < g.SuffixLength {
		if _, err := io.ReadFull(g.Random, buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, alphabet[int(b)%len(alphabet)])
			if len(out) == g.SuffixLength {
				break
			}
		}
	}
	return string(out), nil
}

// Valid reports whether code has the ticket format.
func Valid(code string) bool {
	return Pattern.MatchString(code)
}
