package postgres

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// ErrAllCandidatesFailed is returned by FirstHit when every candidate errored.
var ErrAllCandidatesFailed = errors.New("all candidates failed")

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Lookup queries a single candidate. found=false with a nil error means the
// candidate answered but has no matching record.
type Lookup[T any] func(ctx context.Context, candidate string) (value T, found bool, err error)

// FirstHit tries candidates in order and returns the first found value along
// with the candidate that produced it. A candidate error does not stop the
// search. When nothing is found it returns found=false, and the error is
// ErrAllCandidatesFailed (wrapping the last cause) only if every candidate
// errored.
func FirstHit[T any](ctx context.Context, log zerolog.Logger, candidates []string, lookup Lookup[T]) (T, string, bool, error) {
	var zero T
	var lastErr error
	failed := 0

	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return zero, "", false, err
		}

		value, found, err := lookup(ctx, candidate)
		if err != nil {
			failed++
			lastErr = fmt.Errorf("%s: %w", candidate, err)
			log.Debug().Err(err).Str("candidate", candidate).Msg("candidate lookup failed")
			continue
		}
		if found {
			log.Debug().Str("candidate", candidate).Msg("candidate hit")
			return value, candidate, true, nil
		}
	}

	if len(candidates) > 0 && failed == len(candidates) {
		log.Error().Err(lastErr).Int("candidates", len(candidates)).Msg("every candidate failed")
		return zero, "", false, fmt.Errorf("%w: %w", ErrAllCandidatesFailed, lastErr)
	}
	if failed > 0 {
		log.Warn().Err(lastErr).Int("failed", failed).Msg("no hit; some candidates failed")
	}
	return zero, "", false, nil
}

// QualifiedTable returns schema.table quoted for use in SQL. Schema names come
// from configuration, never from requests, but are still validated.
func QualifiedTable(schema, table string) (string, error) {
	if !identRe.MatchString(schema) || !identRe.MatchString(table) {
		return "", fmt.Errorf("invalid identifier %q.%q", schema, table)
	}
	return pq.QuoteIdentifier(schema) + "." + pq.QuoteIdentifier(table), nil
}
