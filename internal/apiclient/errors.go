package apiclient

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/zaqqye/salon_backoffice/internal/apierr"
)

// errorBody accepts the message under any of the keys servers commonly use.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Msg     string `json:"msg"`
	Field   string `json:"field"`
}

func (b errorBody) text() string {
	for _, s := range []string{b.Message, b.Error, b.Msg} {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

func decodeError(status int, raw []byte, r request) error {
	var body errorBody
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &body)
	}
	msg := body.text()
	if status == http.StatusNotFound && r.id != "" {
		return &apierr.NotFoundError{Resource: r.resource, ID: r.id, Message: msg}
	}
	return &apierr.ServerError{Status: status, Message: msg, Field: strings.TrimSpace(body.Field)}
}
