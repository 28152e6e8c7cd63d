package models

import "time"

type MessageKind string

const (
	MessageText   MessageKind = "text"
	MessageSystem MessageKind = "system"
	MessageJoin   MessageKind = "join"
	MessageLeave  MessageKind = "leave"
)

// Message is one entry of an append-only room log. Read is the only field
// that ever changes, and only false→true.
type Message struct {
	ID           string      `json:"id"`
	SenderID     string      `json:"senderId"`
	SenderPseudo string      `json:"senderPseudo"`
	Message      string      `json:"message"`
	Timestamp    time.Time   `json:"timestamp"`
	Kind         MessageKind `json:"type"`
	Read         bool        `json:"read"`
}

// RoomDomain partitions named chat rooms per conversation context.
type RoomDomain string

const (
	DomainGeneral RoomDomain = "general"
	DomainSOS     RoomDomain = "sos"
	DomainExpert  RoomDomain = "expert"
)

func (d RoomDomain) Valid() bool {
	switch d {
	case DomainGeneral, DomainSOS, DomainExpert:
		return true
	}
	return false
}

// ChatRoom is an append-only message log with a participant set that grows
// monotonically.
type ChatRoom struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Participants []string  `json:"participants"`
	Messages     []Message `json:"messages"`
	LastActivity time.Time `json:"lastActivity"`
	IsActive     bool      `json:"isActive"`
}

func (r *ChatRoom) HasParticipant(userID string) bool {
	for _, id := range r.Participants {
		if id == userID {
			return true
		}
	}
	return false
}

// UnreadFrom counts messages not yet read that were sent by someone else.
func (r *ChatRoom) UnreadFrom(userID string) int {
	n := 0
	for _, m := range r.Messages {
		if m.SenderID != userID && !m.Read {
			n++
		}
	}
	return n
}
