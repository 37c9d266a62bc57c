// Package queue defines message payloads exchanged over the message broker.
package queue

// Action is an interactive affordance attached to a notification, rendered
// by the chat frontend as an inline button.  Data is the opaque callback
// payload the frontend posts back when the button is pressed (for partner
// alerts: "bk:ok:<id>" / "bk:no:<id>").
type Action struct {
	Label string `json:"label"`
	Data  string `json:"data"`
}

// NotificationEvent is published once per notification attempt on the
// notify.outbound queue.  The chat frontend consumes these events and
// performs the actual delivery; this service never talks to the chat
// transport directly, so a slow or unreachable frontend cannot stall a
// state transition.
type NotificationEvent struct {
	ChatID    int64    `json:"chat_id"`
	Kind      string   `json:"kind"` // partner_request, booking_accepted, booking_rejected, booking_timeout, admin_alert
	BookingID uint64   `json:"booking_id,omitempty"`
	Text      string   `json:"text"`
	Actions   []Action `json:"actions,omitempty"`
	QueuedAt  string   `json:"queued_at"`
}
