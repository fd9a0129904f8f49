package notify

import (
	"context"
	"time"
)

// AuthorizationStatus is whether notifications may be scheduled.
type AuthorizationStatus string

const (
	StatusNotDetermined AuthorizationStatus = "not_determined"
	StatusAuthorized    AuthorizationStatus = "authorized"
	StatusDenied        AuthorizationStatus = "denied"
	StatusProvisional   AuthorizationStatus = "provisional"
)

// Granted reports whether the status allows scheduling.
func (s AuthorizationStatus) Granted() bool {
	return s == StatusAuthorized || s == StatusProvisional
}

// Notification is a single fire-and-forget alert.
type Notification struct {
	ID     string    `json:"id"`
	Title  string    `json:"title"`
	Body   string    `json:"body"`
	FireAt time.Time `json:"fire_at"`
}

// Authority is the notification collaborator the reminder lifecycle talks
// to. Schedule with an existing id replaces the pending notification.
type Authority interface {
	AuthorizationStatus(ctx context.Context) (AuthorizationStatus, error)
	RequestAuthorization(ctx context.Context) (bool, error)
	Schedule(ctx context.Context, n Notification) error
	Cancel(ctx context.Context, id string) error
}

// Sender delivers a notification to the user.
type Sender interface {
	Send(ctx context.Context, n Notification) error
}
