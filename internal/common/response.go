package common

import (
	"encoding/json"
	"net/http"
)

// Envelope is the uniform response shape returned by every settlement endpoint.
type Envelope struct {
	Status bool   `json:"status"`
	Msg    string `json:"msg"`
	Data   any    `json:"data,omitempty"`
	Code   string `json:"code,omitempty"`
}

// JSON writes the provided value to the response writer as JSON.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// RespondOK renders a successful envelope.
func RespondOK(w http.ResponseWriter, msg string, data any) {
	JSON(w, http.StatusOK, Envelope{Status: true, Msg: msg, Data: data})
}

// RespondFail renders a failure envelope with the given HTTP status.
func RespondFail(w http.ResponseWriter, httpStatus int, code, msg string) {
	JSON(w, httpStatus, Envelope{Status: false, Msg: msg, Code: code})
}

// RespondError maps an error to the envelope, preferring AppError metadata.
// Internal detail never leaks into msg; callers log the original error.
func RespondError(w http.ResponseWriter, err error) {
	if app, ok := AsAppError(err); ok {
		status := app.HTTPStatus
		if status == 0 {
			status = http.StatusInternalServerError
		}
		msg := app.Message
		if msg == "" {
			msg = "request failed"
		}
		RespondFail(w, status, app.Code, msg)
		return
	}
	RespondFail(w, http.StatusInternalServerError, CodeInternal, "something went wrong, try again")
}
