package httpapi

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"collab-chat/errors"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps the core error taxonomy onto HTTP statuses:
// invalid argument is a bad request, missing entities are not found,
// a lost private-pair race is a conflict the client may retry, and
// anything else is treated as a storage failure.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case stderrors.Is(err, errors.ErrInvalidArgument):
		respondError(w, http.StatusBadRequest, err.Error())
	case stderrors.Is(err, errors.ErrConversationNotFound), stderrors.Is(err, errors.ErrUserNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case stderrors.Is(err, errors.ErrPrivateChatConflict):
		respondError(w, http.StatusConflict, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
