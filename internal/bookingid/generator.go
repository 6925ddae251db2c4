// Package bookingid generates human-readable booking identifiers.
//
// An identifier is a 12-digit date/time prefix (day, month, 4-digit year,
// hour, minute) followed by a 3-digit zero-padded sequence number scoped to
// that minute. The generator proposes candidates; uniqueness is enforced by
// the storage layer's unique index, which the generator cooperates with via
// retry-on-conflict. No lock is held across the read-then-write gap.
package bookingid

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// prefixLayout renders DDMMYYYYHHMM, all fields zero-padded.
const prefixLayout = "020120061504"

const (
	defaultMaxAttempts = 10
	maxSequence        = 999
)

// ErrDuplicateIdentifier must be returned (possibly wrapped) by a PersistFunc
// when the storage layer's unique constraint rejects the candidate.
var ErrDuplicateIdentifier = errors.New("booking identifier already exists")

// ErrIdentifierExhausted means the retry budget ran out and the random
// fallback also collided. Callers may retry the whole creation request; the
// condition clears once contention on the current minute subsides.
var ErrIdentifierExhausted = errors.New("booking identifier space exhausted")

// Store is the query capability the generator needs from persistence:
// the lexicographically largest existing identifier sharing a prefix, or ""
// when none exists. Lexicographic max equals numeric max because the
// sequence suffix is fixed-width zero-padded.
type Store interface {
	MaxIdentifierWithPrefix(ctx context.Context, prefix string) (string, error)
}

// PersistFunc attempts to persist the owning record under the candidate
// identifier. It returns ErrDuplicateIdentifier when another writer won the
// race for the same sequence number.
type PersistFunc func(ctx context.Context, identifier string) error

// Generator produces booking identifiers. It is stateless across calls and
// safe for concurrent use.
type Generator struct {
	log         *zap.Logger
	store       Store
	maxAttempts int
	randSuffix  func() int
}

// New constructs a Generator with the default retry budget.
func New(log *zap.Logger, store Store) *Generator {
	return &Generator{
		log:         log,
		store:       store,
		maxAttempts: defaultMaxAttempts,
		randSuffix:  func() int { return rand.Intn(maxSequence + 1) },
	}
}

// Generate produces a unique identifier for the timestamp now and persists
// the owning record through persist. The timestamp is injected rather than
// read internally so callers and tests control the minute prefix.
//
// Each attempt re-reads the current maximum sequence for the prefix and
// tries an insert; a duplicate rejection means a concurrent writer took the
// slot, so the sequence is re-read and the insert retried. After the retry
// budget, one random-suffix fallback is attempted: it trades determinism for
// liveness, so a warning is logged for observability. A collision on the
// fallback itself is ErrIdentifierExhausted.
func (g *Generator) Generate(ctx context.Context, now time.Time, persist PersistFunc) (string, error) {
	prefix := now.Format(prefixLayout)

	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		seq, err := g.nextSequence(ctx, prefix)
		if err != nil {
			return "", fmt.Errorf("query max identifier for prefix %s: %w", prefix, err)
		}
		if seq > maxSequence {
			// The 3-digit space for this minute is full; the counter
			// path cannot help, only the fallback can.
			break
		}

		candidate := fmt.Sprintf("%s%03d", prefix, seq)
		err = persist(ctx, candidate)
		if err == nil {
			return candidate, nil
		}
		if !errors.Is(err, ErrDuplicateIdentifier) {
			return "", fmt.Errorf("persist booking %s: %w", candidate, err)
		}
		g.log.Debug("identifier conflict, retrying",
			zap.String("identifier", candidate),
			zap.Int("attempt", attempt),
		)
	}

	fallback := fmt.Sprintf("%s%03d", prefix, g.randSuffix())
	g.log.Warn("identifier fallback engaged",
		zap.String("prefix", prefix),
		zap.String("identifier", fallback),
		zap.Int("attempts", g.maxAttempts),
	)

	err := persist(ctx, fallback)
	if err == nil {
		return fallback, nil
	}
	if errors.Is(err, ErrDuplicateIdentifier) {
		return "", ErrIdentifierExhausted
	}
	return "", fmt.Errorf("persist booking %s: %w", fallback, err)
}

// nextSequence returns the next free sequence number for the prefix: one
// past the stored maximum, or 1 when the minute has no bookings yet.
func (g *Generator) nextSequence(ctx context.Context, prefix string) (int, error) {
	maxID, err := g.store.MaxIdentifierWithPrefix(ctx, prefix)
	if err != nil {
		return 0, err
	}
	if maxID == "" {
		return 1, nil
	}
	if len(maxID) != len(prefix)+3 {
		return 0, fmt.Errorf("stored identifier %q has unexpected length", maxID)
	}
	seq, err := strconv.Atoi(maxID[len(prefix):])
	if err != nil {
		return 0, fmt.Errorf("stored identifier %q has non-numeric suffix", maxID)
	}
	return seq + 1, nil
}
