package models

type BadgePriority string

const (
	PrioritySOS    BadgePriority = "sos"
	PriorityExpert BadgePriority = "expert"
	PrioritySocial BadgePriority = "social"
	PriorityNone   BadgePriority = "none"
)

// BadgeData is the aggregated unread signal shown next to the conversations
// entry point. Priority follows strict precedence, never magnitude.
type BadgeData struct {
	Color         string        `json:"color"`
	ColorHex      string        `json:"colorHex"`
	BackgroundHex string        `json:"backgroundHex"`
	TotalCount    int           `json:"totalCount"`
	SOSCount      int           `json:"sosCount"`
	ExpertCount   int           `json:"expertCount"`
	SocialCount   int           `json:"socialCount"`
	Priority      BadgePriority `json:"priority"`
}
