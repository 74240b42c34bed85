package greetingrepo

import (
	"context"

	"github.com/Overland-East-Bay/greetings-api/internal/domain"
)

// Repository owns the authoritative id -> greeting mapping and id generation.
//
// Save semantics:
// - draft without ID: allocate the next id and insert a new record.
// - draft with a known ID: overwrite the message of the stored record.
// - draft with an unknown ID: return an error wrapping ErrUnknownID; nothing is mutated.
type Repository interface {
	Save(ctx context.Context, d domain.Draft) (domain.Greeting, error)
	Get(ctx context.Context, id domain.GreetingID) (domain.Greeting, error)
}
