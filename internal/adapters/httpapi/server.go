package httpapi

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/hlog"

	"github.com/Overland-East-Bay/greetings-api/internal/adapters/httpapi/oas"
	"github.com/Overland-East-Bay/greetings-api/internal/app/greetings"
	"github.com/Overland-East-Bay/greetings-api/internal/domain"
	clockport "github.com/Overland-East-Bay/greetings-api/internal/ports/out/clock"
	"github.com/Overland-East-Bay/greetings-api/internal/ports/out/idempotency"
)

const (
	saveGreetingRoute = "/greetings"

	// maxBodyBytes bounds POST /greetings bodies.
	maxBodyBytes = 1 << 20

	replayedHeader = "Idempotent-Replayed"
)

// Server is the HTTP adapter implementation of oas.ServerInterface.
type Server struct {
	Greetings *greetings.Service
	// Idem enables Idempotency-Key replay when non-nil.
	Idem idempotency.Store
	Clk  clockport.Clock
}

func NewServer(greetingsSvc *greetings.Service, idem idempotency.Store, clk clockport.Clock) *Server {
	return &Server{
		Greetings: greetingsSvc,
		Idem:      idem,
		Clk:       clk,
	}
}

var _ oas.ServerInterface = (*Server)(nil)

func (s *Server) SaveGreeting(w http.ResponseWriter, r *http.Request, params oas.SaveGreetingParams) {
	ctx := r.Context()
	log := hlog.FromRequest(r)

	body, err := decodeSaveGreetingBody(w, r)
	if err != nil {
		writeOASError(w, r, http.StatusBadRequest, "MALFORMED_REQUEST", "request body must be a JSON greeting", map[string]any{"body": err.Error()})
		return
	}

	// Idempotency handling:
	// - Replay if same key+route+bodyHash
	// - Reject if same key+route with different bodyHash (409)
	var respFP *idempotency.Fingerprint
	if params.IdempotencyKey != nil && s.Idem != nil {
		key := strings.TrimSpace(*params.IdempotencyKey)
		if key == "" || len(key) > idempotency.MaxKeyLength {
			writeOASError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "invalid Idempotency-Key", map[string]any{"Idempotency-Key": "must be 1-255 characters"})
			return
		}
		bodyHash, err := hashSaveGreetingBody(body)
		if err != nil {
			s.writeInternalError(w, r, err)
			return
		}
		fp := idempotency.Fingerprint{
			Key:      idempotency.Key(key),
			Method:   http.MethodPost,
			Route:    saveGreetingRoute,
			BodyHash: bodyHash,
		}

		replayed, err := s.checkIdempotency(ctx, fp)
		if err != nil {
			if errors.Is(err, errIdempotencyKeyReuse) {
				writeOASError(w, r, http.StatusConflict, "IDEMPOTENCY_KEY_REUSE", "idempotency key reuse with different payload", nil)
				return
			}
			s.writeInternalError(w, r, err)
			return
		}
		if replayed != nil {
			log.Debug().Str("idempotency_key", key).Msg("replaying stored response")
			w.Header().Set("Content-Type", replayed.ContentType)
			w.Header().Set(replayedHeader, "true")
			w.WriteHeader(replayed.StatusCode)
			_, _ = w.Write(replayed.Body)
			return
		}
		respFP = &fp
	}

	g, err := s.Greetings.SaveGreeting(ctx, saveGreetingInputFromOAS(body))
	if err != nil {
		if ae := (*greetings.Error)(nil); errors.As(err, &ae) {
			writeOASError(w, r, ae.Status, ae.Code, ae.Message, ae.Details)
			return
		}
		s.writeInternalError(w, r, err)
		return
	}

	payload, err := json.Marshal(greetingFromDomain(g))
	if err != nil {
		s.writeInternalError(w, r, err)
		return
	}

	// Store successful response for replay.
	if respFP != nil {
		if err := s.Idem.Put(ctx, *respFP, idempotency.Record{
			StatusCode:  http.StatusOK,
			ContentType: "application/json",
			Body:        payload,
			CreatedAt:   s.now(),
		}); err != nil {
			log.Warn().Err(err).Msg("failed to store idempotent response")
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

var errIdempotencyKeyReuse = errors.New("idempotency key reuse with different payload")

// checkIdempotency returns a stored response to replay for fp, or nil when the request
// should execute. The first use of a key records its body hash in a metadata record.
func (s *Server) checkIdempotency(ctx context.Context, fp idempotency.Fingerprint) (*idempotency.Record, error) {
	metaFP := fp.Meta()
	meta, ok, err := s.Idem.Get(ctx, metaFP)
	if err != nil {
		return nil, err
	}
	if ok {
		if string(meta.Body) != fp.BodyHash {
			return nil, errIdempotencyKeyReuse
		}
	} else if err := s.Idem.Put(ctx, metaFP, idempotency.Record{
		StatusCode:  0,
		ContentType: "text/plain",
		Body:        []byte(fp.BodyHash),
		CreatedAt:   s.now(),
	}); err != nil {
		return nil, err
	}

	rec, ok, err := s.Idem.Get(ctx, fp)
	if err != nil {
		return nil, err
	}
	if ok && rec.StatusCode == http.StatusOK && strings.HasPrefix(rec.ContentType, "application/json") {
		return &rec, nil
	}
	return nil, nil
}

func (s *Server) writeInternalError(w http.ResponseWriter, r *http.Request, err error) {
	hlog.FromRequest(r).Error().Err(err).Msg("save greeting failed")
	writeOASError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "internal error", nil)
}

func (s *Server) now() time.Time {
	if s.Clk == nil {
		return time.Now().UTC()
	}
	return s.Clk.Now()
}

func decodeSaveGreetingBody(w http.ResponseWriter, r *http.Request) (oas.SaveGreetingJSONRequestBody, error) {
	var body oas.SaveGreetingJSONRequestBody
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			return body, errors.New("missing request body")
		}
		return body, err
	}
	if dec.More() {
		return body, errors.New("unexpected data after JSON object")
	}
	return body, nil
}

func saveGreetingInputFromOAS(b oas.SaveGreetingRequest) greetings.SaveGreetingInput {
	in := greetings.SaveGreetingInput{Message: b.Message}
	if b.Id.IsSpecified() && !b.Id.IsNull() {
		if v, err := b.Id.Get(); err == nil {
			in.ID = &v
		}
	}
	return in
}

func greetingFromDomain(g domain.Greeting) oas.Greeting {
	return oas.Greeting{
		Id:      int64(g.ID),
		Message: g.Message,
	}
}

func hashSaveGreetingBody(b oas.SaveGreetingRequest) (string, error) {
	raw, err := json.Marshal(b)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}
