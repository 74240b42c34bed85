package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/nullable"
	"github.com/rs/zerolog/hlog"

	"github.com/Overland-East-Bay/greetings-api/internal/adapters/httpapi/oas"
)

func writeOASError(w http.ResponseWriter, r *http.Request, status int, code string, message string, details map[string]any) {
	var er oas.ErrorResponse
	er.Error.Code = code
	er.Error.Message = message
	if details != nil {
		er.Error.Details = nullable.NewNullableWithValue(map[string]any(details))
	}
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		er.Error.RequestId = nullable.NewNullableWithValue(rid)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(er)
}

// paramErrorHandler renders header/path binding failures from the oas layer.
func paramErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	details := map[string]any{}
	var tooMany *oas.TooManyValuesForParamError
	var invalid *oas.InvalidParamFormatError
	switch {
	case errors.As(err, &tooMany):
		details[tooMany.ParamName] = "must be provided at most once"
	case errors.As(err, &invalid):
		details[invalid.ParamName] = "invalid format"
	}
	hlog.FromRequest(r).Debug().Err(err).Msg("rejected request parameters")
	writeOASError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), details)
}
