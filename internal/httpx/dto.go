package httpx

import "github.com/jcmexdev/statesaga/internal/eventlog"

type EventsResponse struct {
	Events []eventlog.Event `json:"events"`
}

type FlushResponse struct {
	Flushed int `json:"flushed"`
}

type PushHistoryRequest struct {
	URL           string `json:"url"`
	State         any    `json:"state,omitempty"`
	PreserveState bool   `json:"preserve_state,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
