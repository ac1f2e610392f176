// Package respond writes the uniform API envelope used by every endpoint,
// including guard rejections.
package respond

import (
	"encoding/json"
	"net/http"
	"time"

	"onboard/internal/apperr"
)

type Envelope struct {
	URL        string   `json:"url"`
	Message    []string `json:"message"`
	Success    bool     `json:"success"`
	StatusCode int      `json:"statusCode"`
	Timestamp  string   `json:"timestamp"`
	Data       any      `json:"data,omitempty"`
}

func JSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	write(w, Envelope{
		URL:        r.URL.Path,
		Message:    []string{"Success"},
		Success:    true,
		StatusCode: status,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Data:       data,
	}, status)
}

func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.StatusOf(err)
	write(w, Envelope{
		URL:        r.URL.Path,
		Message:    apperr.MessagesOf(err),
		Success:    false,
		StatusCode: status,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}, status)
}

func write(w http.ResponseWriter, body Envelope, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(body)
}
