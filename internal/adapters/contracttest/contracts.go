package contracttest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Overland-East-Bay/greetings-api/internal/domain"
	greetingrepoport "github.com/Overland-East-Bay/greetings-api/internal/ports/out/greetingrepo"
	idempotencyport "github.com/Overland-East-Bay/greetings-api/internal/ports/out/idempotency"
)

type CleanupFunc = func()

type GreetingRepoFactory func(t *testing.T) (greetingrepoport.Repository, CleanupFunc)
type IdemStoreFactory func(t *testing.T) (idempotencyport.Store, CleanupFunc)

func RunIdempotencyStore(t *testing.T, newStore IdemStoreFactory) {
	t.Helper()
	ctx := context.Background()

	store, cleanup := newStore(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	fp := idempotencyport.Fingerprint{
		Key:    "k-1",
		Method: "POST",
		Route:  "/greetings",
	}
	rec := idempotencyport.Record{
		StatusCode:  0,
		ContentType: "text/plain",
		Body:        []byte("hash-abc"),
		CreatedAt:   time.Unix(123, 0).UTC(),
	}
	if _, ok, err := store.Get(ctx, fp); err != nil || ok {
		t.Fatalf("Get(before Put): ok=%v err=%v, want ok=false", ok, err)
	}
	if err := store.Put(ctx, fp, rec); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := store.Get(ctx, fp)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatalf("expected ok=true")
	}
	if string(got.Body) != "hash-abc" || got.ContentType != "text/plain" || got.StatusCode != 0 {
		t.Fatalf("unexpected record: %+v", got)
	}

	// Overwrite semantics.
	rec2 := rec
	rec2.StatusCode = 200
	rec2.ContentType = "application/json"
	rec2.Body = []byte(`{"id":1,"message":"hi"}`)
	if err := store.Put(ctx, fp, rec2); err != nil {
		t.Fatalf("Put(overwrite): %v", err)
	}
	got, ok, err = store.Get(ctx, fp)
	if err != nil || !ok {
		t.Fatalf("Get(after overwrite): ok=%v err=%v", ok, err)
	}
	if got.StatusCode != 200 || string(got.Body) != `{"id":1,"message":"hi"}` {
		t.Fatalf("unexpected record after overwrite: %+v", got)
	}

	// Distinct body hashes are distinct records.
	other := fp
	other.BodyHash = "different"
	if _, ok, err := store.Get(ctx, other); err != nil || ok {
		t.Fatalf("Get(other fingerprint): ok=%v err=%v, want ok=false", ok, err)
	}
}

func RunGreetingRepo(t *testing.T, newRepo GreetingRepoFactory) {
	t.Helper()

	t.Run("create assigns increasing ids starting at 1", func(t *testing.T) {
		repo, cleanup := newRepo(t)
		if cleanup != nil {
			t.Cleanup(cleanup)
		}
		ctx := context.Background()

		g1 := mustSave(t, repo, nil, "hi")
		g2 := mustSave(t, repo, nil, "there")
		if g1.ID != 1 || g2.ID != 2 {
			t.Fatalf("ids=%d,%d want 1,2", g1.ID, g2.ID)
		}
		if g1.Message != "hi" || g2.Message != "there" {
			t.Fatalf("messages=%q,%q", g1.Message, g2.Message)
		}
		got, err := repo.Get(ctx, g2.ID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got != g2 {
			t.Fatalf("Get()=%+v, want %+v", got, g2)
		}
	})

	t.Run("update overwrites message under the same id", func(t *testing.T) {
		repo, cleanup := newRepo(t)
		if cleanup != nil {
			t.Cleanup(cleanup)
		}
		ctx := context.Background()

		created := mustSave(t, repo, nil, "hi")
		id := created.ID
		updated := mustSave(t, repo, &id, "bye")
		if updated.ID != created.ID || updated.Message != "bye" {
			t.Fatalf("updated=%+v", updated)
		}
		got, err := repo.Get(ctx, id)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.Message != "bye" {
			t.Fatalf("stored message=%q, want %q", got.Message, "bye")
		}

		// Updates do not consume ids.
		next := mustSave(t, repo, nil, "next")
		if next.ID != created.ID+1 {
			t.Fatalf("next id=%d, want %d", next.ID, created.ID+1)
		}
	})

	t.Run("repeated update is idempotent", func(t *testing.T) {
		repo, cleanup := newRepo(t)
		if cleanup != nil {
			t.Cleanup(cleanup)
		}

		created := mustSave(t, repo, nil, "hi")
		id := created.ID
		first := mustSave(t, repo, &id, "same")
		second := mustSave(t, repo, &id, "same")
		if first != second || second != (domain.Greeting{ID: id, Message: "same"}) {
			t.Fatalf("first=%+v second=%+v", first, second)
		}
	})

	t.Run("unknown id fails without mutation", func(t *testing.T) {
		repo, cleanup := newRepo(t)
		if cleanup != nil {
			t.Cleanup(cleanup)
		}
		ctx := context.Background()

		created := mustSave(t, repo, nil, "hi")

		unknown := domain.GreetingID(42)
		d, err := domain.NewDraft(&unknown, "x")
		if err != nil {
			t.Fatalf("NewDraft: %v", err)
		}
		if _, err := repo.Save(ctx, d); !errors.Is(err, greetingrepoport.ErrUnknownID) {
			t.Fatalf("Save(unknown) err=%v, want %v", err, greetingrepoport.ErrUnknownID)
		}
		if _, err := repo.Get(ctx, unknown); !errors.Is(err, greetingrepoport.ErrUnknownID) {
			t.Fatalf("Get(unknown) err=%v, want %v", err, greetingrepoport.ErrUnknownID)
		}
		got, err := repo.Get(ctx, created.ID)
		if err != nil || got != created {
			t.Fatalf("Get(existing)=%+v err=%v, want %+v", got, err, created)
		}

		// A failed save must not consume an id.
		next := mustSave(t, repo, nil, "next")
		if next.ID != created.ID+1 {
			t.Fatalf("next id=%d, want %d", next.ID, created.ID+1)
		}
	})

	t.Run("concurrent creates receive distinct ids", func(t *testing.T) {
		repo, cleanup := newRepo(t)
		if cleanup != nil {
			t.Cleanup(cleanup)
		}
		ctx := context.Background()

		const n = 64
		var (
			mu   sync.Mutex
			seen = make(map[domain.GreetingID]bool, n)
		)
		var g errgroup.Group
		for i := 0; i < n; i++ {
			g.Go(func() error {
				d, err := domain.NewDraft(nil, "concurrent")
				if err != nil {
					return err
				}
				saved, err := repo.Save(ctx, d)
				if err != nil {
					return err
				}
				mu.Lock()
				defer mu.Unlock()
				if seen[saved.ID] {
					return errors.New("duplicate id " + saved.ID.String())
				}
				seen[saved.ID] = true
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			t.Fatalf("concurrent saves: %v", err)
		}
		if len(seen) != n {
			t.Fatalf("distinct ids=%d, want %d", len(seen), n)
		}
		for id := domain.GreetingID(1); id <= n; id++ {
			if !seen[id] {
				t.Fatalf("id %d was never issued", id)
			}
		}
	})
}

func mustSave(t *testing.T, repo greetingrepoport.Repository, id *domain.GreetingID, message string) domain.Greeting {
	t.Helper()
	d, err := domain.NewDraft(id, message)
	if err != nil {
		t.Fatalf("NewDraft: %v", err)
	}
	g, err := repo.Save(context.Background(), d)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	return g
}
