package models

import (
	"sort"
	"time"
)

type ContactStatus string

const (
	ContactPending  ContactStatus = "pending"
	ContactAccepted ContactStatus = "accepted"
	ContactDeclined ContactStatus = "declined"
)

// ContactReason is the closed set of motives a requester can pick.
type ContactReason string

const (
	ReasonStoryQuestion   ContactReason = "question_recit"
	ReasonTravelAdvice    ContactReason = "conseil_voyage"
	ReasonShareExperience ContactReason = "partage_experience"
	ReasonMeetup          ContactReason = "rencontre"
	ReasonOther           ContactReason = "autre"
)

func (r ContactReason) Valid() bool {
	switch r {
	case ReasonStoryQuestion, ReasonTravelAdvice, ReasonShareExperience, ReasonMeetup, ReasonOther:
		return true
	}
	return false
}

// ContactRequest is a one-to-one introduction request. Status only moves
// pending→accepted or pending→declined; both are terminal.
type ContactRequest struct {
	ID         string        `json:"id"`
	FromUserID string        `json:"fromUserId"`
	FromPseudo string        `json:"fromUserPseudo"`
	ToUserID   string        `json:"toUserId"`
	ToPseudo   string        `json:"toUserPseudo"`
	Message    string        `json:"message"`
	Reason     ContactReason `json:"reason"`
	Timestamp  time.Time     `json:"timestamp"`
	Status     ContactStatus `json:"status"`
}

// Terminal reports whether the request reached a final state.
func (r *ContactRequest) Terminal() bool {
	return r.Status == ContactAccepted || r.Status == ContactDeclined
}

func (r *ContactRequest) Involves(userID string) bool {
	return r.FromUserID == userID || r.ToUserID == userID
}

type ConversationStatus string

const (
	ConversationActive   ConversationStatus = "active"
	ConversationArchived ConversationStatus = "archived"
)

// Conversation is the ad hoc 1:1 social room created by an accepted contact
// request. Its id is derived from the sorted participant pair, so both sides
// derive the same record name regardless of who accepts.
type Conversation struct {
	ID                 string             `json:"id"`
	Participants       []string           `json:"participants"`
	ParticipantPseudos []string           `json:"participantsPseudos"`
	Title              string             `json:"title"`
	LastMessage        *Message           `json:"lastMessage,omitempty"`
	Timestamp          time.Time          `json:"timestamp"`
	Status             ConversationStatus `json:"status"`
}

func (c *Conversation) HasParticipant(userID string) bool {
	for _, id := range c.Participants {
		if id == userID {
			return true
		}
	}
	return false
}

// Other returns the participant that is not userID.
func (c *Conversation) Other(userID string) string {
	for _, id := range c.Participants {
		if id != userID {
			return id
		}
	}
	return ""
}

// PairConversationID derives the deterministic conversation id for an
// unordered pair of users.
func PairConversationID(a, b string) string {
	ids := []string{a, b}
	sort.Strings(ids)
	return "social_" + ids[0] + "_" + ids[1]
}
