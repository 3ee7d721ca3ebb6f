package catalog

import (
	"context"
	"errors"
	"fmt"

	"bookjournal/src/internal/schema"
)

// Attempt records one resolver's answer during LookupChain.
type Attempt struct {
	Provider string
	Success  bool
	Error    string
}

// Named pairs a resolver with the name reported in attempts.
type Named struct {
	Name     string
	Resolver Resolver
}

// LookupChain asks each resolver in order and returns the first record
// found. When all fail the result is ErrNotFound if every resolver simply
// lacked the id, otherwise the last provider error.
func LookupChain(ctx context.Context, id string, chain ...Named) (schema.RawBook, []Attempt, error) {
	attempts := make([]Attempt, 0, len(chain))
	var lastErr error
	for _, n := range chain {
		if err := ctx.Err(); err != nil {
			return schema.RawBook{}, attempts, err
		}
		r, err := n.Resolver.Lookup(ctx, id)
		if err == nil {
			attempts = append(attempts, Attempt{Provider: n.Name, Success: true})
			return r, attempts, nil
		}
		attempts = append(attempts, Attempt{Provider: n.Name, Error: err.Error()})
		if !errors.Is(err, ErrNotFound) {
			lastErr = err
		}
	}
	if lastErr != nil {
		return schema.RawBook{}, attempts, fmt.Errorf("no provider resolved %s: %w", id, lastErr)
	}
	return schema.RawBook{}, attempts, ErrNotFound
}

// ClientResolver adapts any Client to a Resolver through Lookup.
type ClientResolver struct{ Client Client }

// Lookup implements Resolver.
func (c ClientResolver) Lookup(ctx context.Context, id string) (schema.RawBook, error) {
	return Lookup(ctx, c.Client, id)
}
