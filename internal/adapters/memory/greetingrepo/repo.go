package greetingrepo

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/Overland-East-Bay/greetings-api/internal/domain"
	"github.com/Overland-East-Bay/greetings-api/internal/ports/out/greetingrepo"
)

// Repo is an in-memory implementation of greetingrepo.Repository.
// It is safe for concurrent use.
//
// Id allocation is atomic. Concurrent saves to the same existing id are
// last-write-wins; there is no read-modify-write lock around updates.
type Repo struct {
	lastID atomic.Int64

	// domain.GreetingID -> domain.Greeting
	byID sync.Map
}

func NewRepo() *Repo {
	return &Repo{}
}

func (r *Repo) Save(ctx context.Context, d domain.Draft) (domain.Greeting, error) {
	_ = ctx
	if !d.HasID() {
		return r.create(d), nil
	}
	return r.update(*d.ID, d.Message)
}

func (r *Repo) create(d domain.Draft) domain.Greeting {
	g := domain.Greeting{
		ID:      domain.GreetingID(r.lastID.Add(1)),
		Message: d.Message,
	}
	r.byID.Store(g.ID, g)
	return g
}

func (r *Repo) update(id domain.GreetingID, message string) (domain.Greeting, error) {
	v, ok := r.byID.Load(id)
	if !ok {
		return domain.Greeting{}, fmt.Errorf("save greeting id=%d: %w", id, greetingrepo.ErrUnknownID)
	}
	// No deletes exist, so a loaded id stays present for the rest of the process.
	g := v.(domain.Greeting)
	g.Message = message
	r.byID.Store(id, g)
	return g, nil
}

func (r *Repo) Get(ctx context.Context, id domain.GreetingID) (domain.Greeting, error) {
	_ = ctx
	v, ok := r.byID.Load(id)
	if !ok {
		return domain.Greeting{}, fmt.Errorf("get greeting id=%d: %w", id, greetingrepo.ErrUnknownID)
	}
	return v.(domain.Greeting), nil
}

// Len returns the number of stored greetings.
func (r *Repo) Len() int {
	n := 0
	r.byID.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Snapshot returns a copy of every stored greeting keyed by id.
func (r *Repo) Snapshot() map[domain.GreetingID]domain.Greeting {
	out := make(map[domain.GreetingID]domain.Greeting)
	r.byID.Range(func(k, v any) bool {
		out[k.(domain.GreetingID)] = v.(domain.Greeting)
		return true
	})
	return out
}
