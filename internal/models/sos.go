package models

import "time"

type SOSStatus string

const (
	SOSActive     SOSStatus = "active"
	SOSInProgress SOSStatus = "in_progress"
	SOSResolved   SOSStatus = "resolved"
)

type UrgencyLevel string

const (
	UrgencyLow      UrgencyLevel = "low"
	UrgencyMedium   UrgencyLevel = "medium"
	UrgencyHigh     UrgencyLevel = "high"
	UrgencyCritical UrgencyLevel = "critical"
)

func (u UrgencyLevel) Valid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyCritical:
		return true
	}
	return false
}

// SOS categories. Used for display only; they never affect transitions.
const (
	SOSCategoryMedical   = "medical"
	SOSCategoryTransport = "transport"
	SOSCategoryLodging   = "logement"
	SOSCategorySafety    = "securite"
	SOSCategoryMoney     = "argent"
	SOSCategoryOther     = "autre"
)

// Location is an opaque coordinate pair from the geolocation provider.
// Never validated by the engine.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address,omitempty"`
}

// SOSResponse is one helper's offer, append-only.
type SOSResponse struct {
	ID           string    `json:"id"`
	HelperID     string    `json:"helperId"`
	HelperPseudo string    `json:"helperPseudo"`
	Message      string    `json:"message"`
	Timestamp    time.Time `json:"timestamp"`
}

// SOSRequest is an emergency request. Status walks
// active → in_progress → resolved; in_progress is entered by the first
// offer only, resolved is terminal and owner-only.
type SOSRequest struct {
	ID           string        `json:"id"`
	UserID       string        `json:"userId"`
	UserPseudo   string        `json:"userPseudo"`
	Message      string        `json:"message"`
	Category     string        `json:"category"`
	UrgencyLevel UrgencyLevel  `json:"urgencyLevel"`
	Status       SOSStatus     `json:"status"`
	Helpers      []string      `json:"helpers"`
	Responses    []SOSResponse `json:"responses"`
	Location     *Location     `json:"location,omitempty"`
	Timestamp    time.Time     `json:"timestamp"`
}

func (r *SOSRequest) HasHelper(userID string) bool {
	for _, id := range r.Helpers {
		if id == userID {
			return true
		}
	}
	return false
}

// InvolvesUser reports whether userID is the owner or a listed helper.
func (r *SOSRequest) InvolvesUser(userID string) bool {
	return r.UserID == userID || r.HasHelper(userID)
}
