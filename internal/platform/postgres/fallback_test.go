package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResult struct {
	value string
	found bool
	err   error
}

func stubLookup(results map[string]stubResult, calls *[]string) Lookup[string] {
	return func(ctx context.Context, candidate string) (string, bool, error) {
		*calls = append(*calls, candidate)
		r := results[candidate]
		return r.value, r.found, r.err
	}
}

func TestFirstHit(t *testing.T) {
	boom := errors.New("relation does not exist")

	tests := []struct {
		name       string
		results    map[string]stubResult
		wantValue  string
		wantFrom   string
		wantFound  bool
		wantErr    bool
		wantCalled []string
	}{
		{
			name:       "first candidate hits",
			results:    map[string]stubResult{"public": {value: "a", found: true}},
			wantValue:  "a",
			wantFrom:   "public",
			wantFound:  true,
			wantCalled: []string{"public"},
		},
		{
			name: "error is skipped",
			results: map[string]stubResult{
				"public": {err: boom},
				"admin":  {value: "b", found: true},
			},
			wantValue:  "b",
			wantFrom:   "admin",
			wantFound:  true,
			wantCalled: []string{"public", "admin"},
		},
		{
			name:       "empty everywhere",
			results:    map[string]stubResult{},
			wantCalled: []string{"public", "admin", "private"},
		},
		{
			name: "mixed errors and empty is not found",
			results: map[string]stubResult{
				"public":  {err: boom},
				"admin":   {},
				"private": {err: boom},
			},
			wantCalled: []string{"public", "admin", "private"},
		},
		{
			name: "all errors",
			results: map[string]stubResult{
				"public":  {err: boom},
				"admin":   {err: boom},
				"private": {err: boom},
			},
			wantErr:    true,
			wantCalled: []string{"public", "admin", "private"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls []string
			value, from, found, err := FirstHit(context.Background(), zerolog.Nop(),
				[]string{"public", "admin", "private"}, stubLookup(tt.results, &calls))

			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrAllCandidatesFailed)
				assert.ErrorIs(t, err, boom)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantValue, value)
			assert.Equal(t, tt.wantFrom, from)
			assert.Equal(t, tt.wantFound, found)
			assert.Equal(t, tt.wantCalled, calls)
		})
	}
}

func TestFirstHit_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls []string
	_, _, found, err := FirstHit(ctx, zerolog.Nop(), []string{"public"}, stubLookup(nil, &calls))
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, found)
	assert.Empty(t, calls)
}

func TestQualifiedTable(t *testing.T) {
	name, err := QualifiedTable("admin", "admin_users")
	require.NoError(t, err)
	assert.Equal(t, `"admin"."admin_users"`, name)

	_, err = QualifiedTable("public; drop table x", "admin_users")
	assert.Error(t, err)
}
