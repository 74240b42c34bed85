package greetings

import (
	"context"
	"errors"
	"testing"

	memgreetingrepo "github.com/Overland-East-Bay/greetings-api/internal/adapters/memory/greetingrepo"
	"github.com/Overland-East-Bay/greetings-api/internal/domain"
)

func int64Ptr(v int64) *int64 { return &v }

func TestService_CreateThenUpdate(t *testing.T) {
	t.Parallel()

	repo := memgreetingrepo.NewRepo()
	svc := NewService(repo)

	created, err := svc.SaveGreeting(context.Background(), SaveGreetingInput{Message: "hi"})
	if err != nil {
		t.Fatalf("SaveGreeting(create) err=%v", err)
	}
	if created != (domain.Greeting{ID: 1, Message: "hi"}) {
		t.Fatalf("created=%+v", created)
	}

	updated, err := svc.SaveGreeting(context.Background(), SaveGreetingInput{ID: int64Ptr(1), Message: "bye"})
	if err != nil {
		t.Fatalf("SaveGreeting(update) err=%v", err)
	}
	if updated != (domain.Greeting{ID: 1, Message: "bye"}) {
		t.Fatalf("updated=%+v", updated)
	}
	if repo.Len() != 1 {
		t.Fatalf("Len()=%d, want 1", repo.Len())
	}
}

func TestService_BlankMessage_ValidationError(t *testing.T) {
	t.Parallel()

	repo := memgreetingrepo.NewRepo()
	svc := NewService(repo)

	for _, msg := range []string{"", "   "} {
		_, err := svc.SaveGreeting(context.Background(), SaveGreetingInput{Message: msg})
		ae := (*Error)(nil)
		if !errors.As(err, &ae) || ae.Status != 400 || ae.Code != "VALIDATION_ERROR" {
			t.Fatalf("SaveGreeting(%q) err=%v (type=%T), want VALIDATION_ERROR 400", msg, err, err)
		}
	}

	// No id was consumed by the rejected requests.
	created, err := svc.SaveGreeting(context.Background(), SaveGreetingInput{Message: "hi"})
	if err != nil {
		t.Fatalf("SaveGreeting err=%v", err)
	}
	if created.ID != 1 {
		t.Fatalf("id=%d, want 1", created.ID)
	}
}

func TestService_UnknownID_NotFound(t *testing.T) {
	t.Parallel()

	repo := memgreetingrepo.NewRepo()
	svc := NewService(repo)
	if _, err := svc.SaveGreeting(context.Background(), SaveGreetingInput{Message: "hi"}); err != nil {
		t.Fatalf("SaveGreeting err=%v", err)
	}

	_, err := svc.SaveGreeting(context.Background(), SaveGreetingInput{ID: int64Ptr(42), Message: "x"})
	ae := (*Error)(nil)
	if !errors.As(err, &ae) || ae.Status != 404 || ae.Code != "GREETING_NOT_FOUND" {
		t.Fatalf("err=%v (type=%T), want GREETING_NOT_FOUND 404", err, err)
	}
	if ae.Details["id"] != int64(42) {
		t.Fatalf("details=%v", ae.Details)
	}

	snap := repo.Snapshot()
	if len(snap) != 1 || snap[1].Message != "hi" {
		t.Fatalf("store=%v, want only {1 hi}", snap)
	}
}
