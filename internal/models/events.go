package models

import "time"

// Event types
const (
	EventTypeCollectionChanged = "COLLECTION_CHANGED"
	EventTypeCategoryRenamed   = "CATEGORY_RENAMED"
	EventTypeInvoicesGenerated = "INVOICES_GENERATED"
	EventTypeUserLoggedIn      = "USER_LOGGED_IN"
	EventTypeUserLoggedOut     = "USER_LOGGED_OUT"
)

// Collection change actions
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
	ActionRecount = "recounted"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// CollectionChangedEvent published after a collection has been rewritten
type CollectionChangedEvent struct {
	BaseEvent
	Collection string `json:"collection"`
	Action     string `json:"action"`
	RecordID   int64  `json:"record_id,omitempty"`
	ActorID    int64  `json:"actor_id,omitempty"`
}

// CategoryRenamedEvent published when a category changes name
type CategoryRenamedEvent struct {
	BaseEvent
	CategoryID int64  `json:"category_id"`
	OldName    string `json:"old_name"`
	NewName    string `json:"new_name"`
}

// InvoicesGeneratedEvent published after invoices were derived from orders
type InvoicesGeneratedEvent struct {
	BaseEvent
	Count int `json:"count"`
}

// SessionEvent published on login and logout
type SessionEvent struct {
	BaseEvent
	SessionID string `json:"session_id"`
	UserID    int64  `json:"user_id"`
	Email     string `json:"email"`
}
