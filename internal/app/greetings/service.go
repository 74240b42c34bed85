package greetings

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/Overland-East-Bay/greetings-api/internal/domain"
	"github.com/Overland-East-Bay/greetings-api/internal/ports/out/greetingrepo"
)

type Service struct {
	repo greetingrepo.Repository
}

func NewService(repo greetingrepo.Repository) *Service {
	return &Service{repo: repo}
}

// SaveGreeting creates a greeting when in.ID is nil and otherwise replaces the
// message of the greeting with that id.
func (s *Service) SaveGreeting(ctx context.Context, in SaveGreetingInput) (domain.Greeting, error) {
	var id *domain.GreetingID
	if in.ID != nil {
		v := domain.GreetingID(*in.ID)
		id = &v
	}

	d, err := domain.NewDraft(id, in.Message)
	if err != nil {
		if errors.Is(err, domain.ErrBlankMessage) {
			return domain.Greeting{}, &Error{
				Status:  http.StatusBadRequest,
				Code:    "VALIDATION_ERROR",
				Message: "invalid message",
				Details: map[string]any{"message": "must be non-blank"},
			}
		}
		return domain.Greeting{}, err
	}

	g, err := s.repo.Save(ctx, d)
	if err != nil {
		if errors.Is(err, greetingrepo.ErrUnknownID) {
			return domain.Greeting{}, &Error{
				Status:  http.StatusNotFound,
				Code:    "GREETING_NOT_FOUND",
				Message: "No greeting exists with the provided id.",
				Details: map[string]any{"id": *in.ID},
			}
		}
		return domain.Greeting{}, err
	}

	zerolog.Ctx(ctx).Debug().
		Int64("greeting_id", int64(g.ID)).
		Bool("created", !d.HasID()).
		Msg("greeting saved")
	return g, nil
}
