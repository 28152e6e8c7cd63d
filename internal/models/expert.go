package models

// Expert is a consultant profile from the expert catalog.
type Expert struct {
	ID              string   `json:"id"`
	Pseudo          string   `json:"pseudo"`
	Specializations []string `json:"specializations"`
	Destinations    []string `json:"destinations"`
	Languages       []string `json:"languages"`
	Rating          float64  `json:"rating"`
	ReviewsCount    int      `json:"reviewsCount"`
	ExperienceYears int      `json:"experienceYears"`
	PriceRange      string   `json:"priceRange"`
	ResponseTime    string   `json:"responseTime"`
	TotalClients    int      `json:"totalClients"`
	Description     string   `json:"description"`
}

// MatchCriteria is the traveler's questionnaire. A flexible flag (or an
// empty value) makes the matcher grant the criterion's full weight.
type MatchCriteria struct {
	Destination         string   `json:"destination"`
	DestinationFlexible bool     `json:"isDestinationFlexible"`
	TravelTypes         []string `json:"travelTypes"`
	TypeFlexible        bool     `json:"isTypeFlexible"`
	Interests           []string `json:"interests"`
	InterestFlexible    bool     `json:"isInterestFlexible"`
	Budget              string   `json:"budget"`
	BudgetFlexible      bool     `json:"isBudgetFlexible"`
	Experience          string   `json:"experience"`
	ExperienceFlexible  bool     `json:"isExperienceFlexible"`
}

// MatchResult pairs an expert with its score and human readable reasons.
type MatchResult struct {
	Expert  Expert   `json:"expert"`
	Score   int      `json:"score"`
	Reasons []string `json:"reasons"`
}
