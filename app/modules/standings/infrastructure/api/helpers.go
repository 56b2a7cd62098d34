package standingsapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	standingsservice "github.com/Black-And-White-Club/tabroom/app/modules/standings/application"
	standingsevents "github.com/Black-And-White-Club/tabroom/app/modules/standings/domain/events"
	"github.com/Black-And-White-Club/tabroom/internal/attr"
)

const maxBodyBytes = 1 << 20

type envelope map[string]any

func readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			return fmt.Errorf("body contains unknown key %s", strings.TrimPrefix(err.Error(), "json: unknown field "))
		case errors.As(err, &maxBytesError):
			return fmt.Errorf("body must not be larger than %d bytes", maxBytesError.Limit)
		default:
			return err
		}
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	js, err := json.Marshal(data)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(js, '\n'))
}

func (a *API) errorResponse(w http.ResponseWriter, status int, message any) {
	writeJSON(w, status, envelope{"error": message})
}

// serviceError maps service errors to statuses. Unknown errors are logged and
// reported as 500 without detail.
func (a *API) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, standingsservice.ErrEventNotFound),
		errors.Is(err, standingsservice.ErrRegistrationNotFound):
		a.errorResponse(w, http.StatusNotFound, err.Error())
	case errors.Is(err, standingsservice.ErrInvalidTiebreakerOrder),
		errors.Is(err, standingsservice.ErrInvalidEventSetup),
		errors.Is(err, standingsservice.ErrInvalidBallot):
		a.errorResponse(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, standingsservice.ErrArchiveDisabled):
		a.errorResponse(w, http.StatusServiceUnavailable, err.Error())
	default:
		a.logger.ErrorContext(r.Context(), "Request failed",
			attr.String("path", r.URL.Path),
			attr.Error(err),
		)
		a.errorResponse(w, http.StatusInternalServerError, "the server encountered a problem and could not process your request")
	}
}

// failureStatus maps a failure payload code to an HTTP status.
func failureStatus(code standingsevents.FailureCode) int {
	if code == standingsevents.FailureNotFound {
		return http.StatusNotFound
	}
	return http.StatusUnprocessableEntity
}

func (a *API) logWriteError(r *http.Request, err error) {
	a.logger.WarnContext(r.Context(), "Failed to write response", slog.String("path", r.URL.Path), attr.Error(err))
}
