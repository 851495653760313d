package web

import (
	"encoding/json"
	"net/http"

	"emperror.dev/errors"
	"github.com/vicentefelipechile/enlacevrc/access"
	"github.com/vicentefelipechile/enlacevrc/common"
	"github.com/vicentefelipechile/enlacevrc/guilds"
	"github.com/vicentefelipechile/enlacevrc/moderation"
	"github.com/vicentefelipechile/enlacevrc/profiles"
	"github.com/vicentefelipechile/enlacevrc/settings"
)

// envelope is the uniform response body. Error responses carry a message
// safe to show a client; storage level detail stays in the server log.
type envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		logger.WithError(err).Error("failed encoding response body")
	}
}

func writeData(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Success: true, Message: message})
}

// writeError maps the internal error taxonomy onto status codes. Anything
// unrecognized is a 500 with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *common.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, envelope{Error: verr.Error()})
		return
	}

	switch {
	case errors.Is(err, access.ErrMissingCredential):
		writeJSON(w, http.StatusUnauthorized, envelope{Error: "missing credential"})
	case errors.Is(err, access.ErrForbidden):
		writeJSON(w, http.StatusForbidden, envelope{Error: "forbidden"})

	case errors.Is(err, guilds.ErrGuildNotFound),
		errors.Is(err, guilds.ErrBindingNotFound),
		errors.Is(err, profiles.ErrProfileNotFound),
		errors.Is(err, settings.ErrEntryNotFound),
		errors.Is(err, moderation.ErrMethodNotFound):
		writeJSON(w, http.StatusNotFound, envelope{Error: err.Error()})

	case errors.Is(err, guilds.ErrGuildExists),
		errors.Is(err, guilds.ErrBindingExists),
		errors.Is(err, profiles.ErrProfileExists),
		errors.Is(err, profiles.ErrProfileBanned),
		errors.Is(err, settings.ErrSettingExists),
		errors.Is(err, moderation.ErrAlreadyBanned),
		errors.Is(err, moderation.ErrNotBanned),
		errors.Is(err, moderation.ErrAlreadyVerified),
		errors.Is(err, moderation.ErrNotVerified):
		writeJSON(w, http.StatusConflict, envelope{Error: err.Error()})

	default:
		logger.WithError(err).Errorf("internal error handling %s %s", r.Method, r.URL.Path)
		writeJSON(w, http.StatusInternalServerError, envelope{Error: "internal error"})
	}
}

// decodeBody reads a JSON request body into dst, rejecting junk as a 400
// class validation error.
func decodeBody(r *http.Request, dst interface{}) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err != nil {
		return common.NewValidationError("malformed request body")
	}

	return nil
}
