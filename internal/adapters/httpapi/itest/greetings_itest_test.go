package itest

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"

	"golang.org/x/sync/errgroup"
)

func TestGreetings_ITest(t *testing.T) {
	srv := newTestServer(t)

	// Create.
	{
		status, body, hdr := srv.doJSON(t, http.MethodPost, "/greetings", nil, map[string]any{"message": "hi"})
		requireGreeting(t, status, body, greetingResponse{ID: 1, Message: "hi"})
		requireHeaderPresent(t, hdr, "X-Request-Id")
	}

	// Update in place.
	{
		status, body, _ := srv.doJSON(t, http.MethodPost, "/greetings", nil, map[string]any{"id": 1, "message": "bye"})
		requireGreeting(t, status, body, greetingResponse{ID: 1, Message: "bye"})
	}

	// Unknown id fails and leaves the store alone.
	{
		status, body, _ := srv.doJSON(t, http.MethodPost, "/greetings", nil, map[string]any{"id": 42, "message": "x"})
		requireErrorCode(t, status, body, http.StatusNotFound, "GREETING_NOT_FOUND")

		snap := srv.repo.Snapshot()
		if len(snap) != 1 || snap[1].Message != "bye" {
			t.Fatalf("store=%v, want only {1 bye}", snap)
		}
	}

	// Blank messages are rejected before reaching the store.
	for _, msg := range []string{"", "   "} {
		status, body, _ := srv.doJSON(t, http.MethodPost, "/greetings", nil, map[string]any{"message": msg})
		requireErrorCode(t, status, body, http.StatusBadRequest, "VALIDATION_ERROR")
	}

	// No id was consumed by the failures above.
	{
		status, body, _ := srv.doJSON(t, http.MethodPost, "/greetings", nil, map[string]any{"message": "next"})
		requireGreeting(t, status, body, greetingResponse{ID: 2, Message: "next"})
	}

	// Retried create with an Idempotency-Key replays the first response.
	{
		hdrs := map[string]string{"Idempotency-Key": "itest-create-1"}
		status, body, _ := srv.doJSON(t, http.MethodPost, "/greetings", hdrs, map[string]any{"message": "once"})
		requireGreeting(t, status, body, greetingResponse{ID: 3, Message: "once"})

		status, body, hdr := srv.doJSON(t, http.MethodPost, "/greetings", hdrs, map[string]any{"message": "once"})
		requireGreeting(t, status, body, greetingResponse{ID: 3, Message: "once"})
		requireHeaderPresent(t, hdr, "Idempotent-Replayed")

		status, body, _ = srv.doJSON(t, http.MethodPost, "/greetings", hdrs, map[string]any{"message": "twice"})
		requireErrorCode(t, status, body, http.StatusConflict, "IDEMPOTENCY_KEY_REUSE")
	}
}

func TestGreetings_ITest_ConcurrentCreatesGetDistinctIDs(t *testing.T) {
	srv := newTestServer(t)

	const n = 32
	var (
		mu  sync.Mutex
		ids = make(map[int64]bool, n)
	)
	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			status, body, _ := srv.doJSON(t, http.MethodPost, "/greetings", nil, map[string]any{"message": "hello"})
			if status != http.StatusOK {
				return errors.New("unexpected status: " + http.StatusText(status) + " body=" + string(body))
			}
			var got greetingResponse
			if err := json.Unmarshal(body, &got); err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			if ids[got.ID] {
				return errors.New("duplicate id issued")
			}
			ids[got.ID] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
	if len(ids) != n || srv.repo.Len() != n {
		t.Fatalf("distinct ids=%d stored=%d want %d", len(ids), srv.repo.Len(), n)
	}
}
