package expert_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wanderlink/backend/internal/expert"
	"wanderlink/backend/internal/models"
)

func flexibleCriteria() models.MatchCriteria {
	return models.MatchCriteria{
		DestinationFlexible: true,
		TypeFlexible:        true,
		InterestFlexible:    true,
		BudgetFlexible:      true,
		ExperienceFlexible:  true,
	}
}

func TestFullyFlexibleClampsAt100(t *testing.T) {
	// 30+25+20+15+10 = 100 before bonuses; bonuses must not overflow.
	e := models.Expert{
		Rating:       4.9,
		ResponseTime: "1h",
		TotalClients: 150,
	}
	score, reasons := expert.Score(e, flexibleCriteria())
	assert.Equal(t, 100, score)
	assert.NotEmpty(t, reasons)
}

func TestDestinationScoring(t *testing.T) {
	e := models.Expert{Destinations: []string{"Japon", "Corée du Sud"}}

	c := models.MatchCriteria{Destination: "japon"}
	score, reasons := expert.Score(e, c)
	// 30 destination + 5 consolation experience (empty criteria grant
	// interests/types/budget their full weight: 25+20+15, experience 10)
	assert.GreaterOrEqual(t, score, 30)
	assert.Contains(t, reasons, "Expert en japon")

	// word overlap gives the partial score
	c = models.MatchCriteria{Destination: "sud de l'Espagne"}
	_, reasons = expert.Score(e, c)
	assert.Contains(t, reasons, "Destinations similaires")

	// no overlap at all
	c = models.MatchCriteria{Destination: "Mars"}
	_, reasons = expert.Score(e, c)
	assert.NotContains(t, reasons, "Expert en Mars")
	assert.NotContains(t, reasons, "Destinations similaires")
}

func TestTravelTypesProportional(t *testing.T) {
	e := models.Expert{Specializations: []string{"Voyage Solo", "Sécurité"}}

	full := models.MatchCriteria{DestinationFlexible: true, InterestFlexible: true, BudgetFlexible: true, ExperienceFlexible: true}

	solo := full
	solo.TravelTypes = []string{"solo"}
	scoreSolo, reasons := expert.Score(e, solo)
	assert.Contains(t, reasons, "Spécialisé solo")

	mixed := full
	mixed.TravelTypes = []string{"solo", "business"}
	scoreMixed, _ := expert.Score(e, mixed)
	assert.Greater(t, scoreSolo, scoreMixed, "half the types matching earns half the weight")
}

func TestBudgetBrackets(t *testing.T) {
	full := flexibleCriteria()
	full.BudgetFlexible = false

	cheap := models.Expert{PriceRange: "35-45€/h"}
	pricey := models.Expert{PriceRange: "65-80€/h"}

	low := full
	low.Budget = "low"
	scoreCheap, reasons := expert.Score(cheap, low)
	assert.Contains(t, reasons, "Budget compatible")
	scorePricey, reasonsPricey := expert.Score(pricey, low)
	assert.Greater(t, scoreCheap, scorePricey)
	// 65 is within 20 of the low target 40? No: distance 25, no partial.
	assert.NotContains(t, reasonsPricey, "Budget proche")

	high := full
	high.Budget = "high"
	_, reasons = expert.Score(cheap, high)
	assert.NotContains(t, reasons, "Budget compatible")
	// distance |35-80| = 45, no partial either
	assert.NotContains(t, reasons, "Budget proche")

	medium := full
	medium.Budget = "medium"
	_, reasons = expert.Score(models.Expert{PriceRange: "75-90€/h"}, medium)
	// 75 misses the 45..70 bracket but sits within 20 of the target 60
	assert.Contains(t, reasons, "Budget proche")
}

func TestExperienceConsolation(t *testing.T) {
	full := flexibleCriteria()
	full.ExperienceFlexible = false
	full.Experience = "expert"

	seasoned, _ := expert.Score(models.Expert{ExperienceYears: 12}, full)
	junior, _ := expert.Score(models.Expert{ExperienceYears: 2}, full)
	assert.Equal(t, 5, seasoned-junior, "a miss still earns the consolation half weight")
}

func TestBonuses(t *testing.T) {
	// A missed destination keeps the base below 100 so bonuses are
	// visible instead of clamped away.
	c := models.MatchCriteria{Destination: "Mars"}

	base, _ := expert.Score(models.Expert{Rating: 4.0, ResponseTime: "12h"}, c)
	rated, _ := expert.Score(models.Expert{Rating: 4.8, ResponseTime: "12h"}, c)
	assert.Equal(t, 5, rated-base)

	okRated, _ := expert.Score(models.Expert{Rating: 4.5, ResponseTime: "12h"}, c)
	assert.Equal(t, 3, okRated-base)

	fast, _ := expert.Score(models.Expert{Rating: 4.0, ResponseTime: "2h"}, c)
	assert.Equal(t, 3, fast-base)

	popular, _ := expert.Score(models.Expert{Rating: 4.0, ResponseTime: "12h", TotalClients: 120}, c)
	assert.Equal(t, 2, popular-base)
}

func TestMatchSortsWithTieBreaks(t *testing.T) {
	experts := []models.Expert{
		{ID: "low", Rating: 4.0, ResponseTime: "12h"},
		{ID: "tie-fewer-reviews", Rating: 4.9, ReviewsCount: 10, ResponseTime: "12h"},
		{ID: "tie-more-reviews", Rating: 4.9, ReviewsCount: 99, ResponseTime: "12h"},
	}
	results := expert.Match(experts, models.MatchCriteria{Destination: "Mars"})
	require.Len(t, results, 3)
	// the two 4.9 experts tie on score; more reviews wins
	assert.Equal(t, "tie-more-reviews", results[0].Expert.ID)
	assert.Equal(t, "tie-fewer-reviews", results[1].Expert.ID)
	assert.Equal(t, "low", results[2].Expert.ID)
}

func TestStockRosterScoresAsExpected(t *testing.T) {
	roster := expert.DefaultExperts()
	require.Len(t, roster, 4)

	c := models.MatchCriteria{
		Destination: "Japon",
		TravelTypes: []string{"solo"},
		Interests:   []string{"culture"},
		Budget:      "medium",
		Experience:  "expert",
	}
	results := expert.Match(roster, c)
	assert.Equal(t, "Marie-Claire", results[0].Expert.Pseudo, "the Japan solo-culture expert must rank first")
	assert.LessOrEqual(t, results[0].Score, 100)
	assert.Greater(t, results[0].Score, results[len(results)-1].Score)
}
