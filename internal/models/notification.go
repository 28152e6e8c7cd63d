package models

import "time"

type NotificationType string

const (
	NotificationContactRequest  NotificationType = "contact_request"
	NotificationContactAccepted NotificationType = "contact_accepted"
	NotificationChatMessage     NotificationType = "chat_message"
	NotificationSOSResponse     NotificationType = "sos_response"
	NotificationSOSAlert        NotificationType = "sos_alert"
)

// Notification is addressed to exactly one recipient. Read is monotonic
// false→true and is the only mutable field.
type Notification struct {
	ID             string           `json:"id"`
	Type           NotificationType `json:"type"`
	Title          string           `json:"title"`
	Message        string           `json:"message"`
	Timestamp      time.Time        `json:"timestamp"`
	UserID         string           `json:"userId"`
	RequestID      string           `json:"requestId,omitempty"`
	ConversationID string           `json:"conversationId,omitempty"`
	Read           bool             `json:"read"`
}
