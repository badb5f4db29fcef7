package http

import (
	"encoding/json"
	"html/template"
	"net/http"
)

// HX-Trigger event names the page script listens for.
const (
	eventCalculated   = "calculation:done"
	eventClassified   = "classification:done"
	eventNotification = "show-notification"
)

// HTMXResponseBuilder assembles a partial response: status, HTML body and the
// HX-Trigger events fired on the client.
type HTMXResponseBuilder struct {
	status   int
	body     []byte
	triggers map[string]any
}

// NewHTMXResponse starts a 200 response with no body.
func NewHTMXResponse() *HTMXResponseBuilder {
	return &HTMXResponseBuilder{status: http.StatusOK, triggers: map[string]any{}}
}

func (b *HTMXResponseBuilder) Status(code int) *HTMXResponseBuilder {
	b.status = code
	return b
}

// Trigger adds an HX-Trigger event. data is sent as the event detail.
func (b *HTMXResponseBuilder) Trigger(name string, data any) *HTMXResponseBuilder {
	b.triggers[name] = data
	return b
}

func (b *HTMXResponseBuilder) TriggerCalculated(operator string, ok bool) *HTMXResponseBuilder {
	return b.Trigger(eventCalculated, map[string]any{"operator": operator, "ok": ok})
}

func (b *HTMXResponseBuilder) TriggerClassified(band string) *HTMXResponseBuilder {
	return b.Trigger(eventClassified, map[string]string{"band": band})
}

// NotificationType selects the toast style.
type NotificationType string

const (
	NotificationError   NotificationType = "error"
	NotificationWarning NotificationType = "warning"
)

// TriggerNotification shows a toast for durationMs milliseconds.
func (b *HTMXResponseBuilder) TriggerNotification(kind NotificationType, message string, durationMs int) *HTMXResponseBuilder {
	return b.Trigger(eventNotification, map[string]any{
		"type":     string(kind),
		"message":  message,
		"duration": durationMs,
	})
}

func (b *HTMXResponseBuilder) TriggerErrorNotification(message string) *HTMXResponseBuilder {
	return b.TriggerNotification(NotificationError, message, 5000)
}

// BodyHTML sets an already rendered HTML body.
func (b *HTMXResponseBuilder) BodyHTML(html []byte) *HTMXResponseBuilder {
	b.body = html
	return b
}

// Write sends the response. Triggers that cannot be encoded are dropped.
func (b *HTMXResponseBuilder) Write(w http.ResponseWriter) {
	if len(b.body) > 0 {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	}
	if len(b.triggers) > 0 {
		if data, err := json.Marshal(b.triggers); err == nil {
			w.Header().Set("HX-Trigger", string(data))
		}
	}
	w.WriteHeader(b.status)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

// ErrorResponse is a bare alert block, used when the partial template itself
// cannot be rendered. message is HTML-escaped.
func ErrorResponse(status int, message string) *HTMXResponseBuilder {
	return NewHTMXResponse().
		Status(status).
		BodyHTML([]byte(`<div class="error" role="alert">` + template.HTMLEscapeString(message) + `</div>`))
}
