// Package expert scores consultant profiles against a traveler's
// questionnaire and serves the expert catalog.
package expert

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"wanderlink/backend/internal/models"
)

// Criterion weights. Bonuses on top can push the raw score past the sum,
// so the final score clamps at 100.
const (
	weightDestination = 30
	weightTravelTypes = 25
	weightInterests   = 20
	weightBudget      = 15
	weightExperience  = 10
)

// travelTypeMap links questionnaire travel types to specialization
// keywords. Matching is case-insensitive substring.
var travelTypeMap = map[string][]string{
	"solo":      {"Solo", "Sécurité", "Voyage Solo"},
	"family":    {"Famille", "Enfants", "Voyage Famille"},
	"friends":   {"Groupe", "Amis", "Entre Amis"},
	"business":  {"Professionnel", "Business", "Affaires"},
	"couple":    {"Romantique", "Lune de miel", "Couple"},
	"adventure": {"Aventure", "Trekking", "Nature"},
}

var interestMap = map[string][]string{
	"culture":     {"Culture", "Histoire", "Patrimoine", "Musée"},
	"adventure":   {"Aventure", "Trekking", "Randonnée", "Sport"},
	"gastronomy":  {"Gastronomie", "Cuisine", "Nourriture", "Restaurant"},
	"photography": {"Photo", "Photographe", "Photographie"},
	"diving":      {"Plongée", "Sous-marin", "Aquatique"},
	"trekking":    {"Trekking", "Randonnée", "Montagne", "Marche"},
	"beach":       {"Plage", "Détente", "Mer", "Ocean", "Côte"},
	"nightlife":   {"Vie Nocturne", "Nuit", "Bar", "Club", "Sortie"},
}

var firstNumber = regexp.MustCompile(`(\d+)`)

func hasKeyword(specializations, keywords []string) bool {
	for _, spec := range specializations {
		lower := strings.ToLower(spec)
		for _, kw := range keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				return true
			}
		}
	}
	return false
}

func scoreDestination(e models.Expert, c models.MatchCriteria) (float64, string) {
	if c.DestinationFlexible || c.Destination == "" {
		return weightDestination, "Ouvert à toutes destinations"
	}
	want := strings.ToLower(c.Destination)
	for _, dest := range e.Destinations {
		d := strings.ToLower(dest)
		if strings.Contains(d, want) || strings.Contains(want, d) {
			return weightDestination, "Expert en " + c.Destination
		}
	}
	// Word-level overlap earns a partial score.
	searchWords := strings.Fields(want)
	for _, dest := range e.Destinations {
		for _, dw := range strings.Fields(strings.ToLower(dest)) {
			for _, sw := range searchWords {
				if strings.Contains(dw, sw) || strings.Contains(sw, dw) {
					return 20, "Destinations similaires"
				}
			}
		}
	}
	return 0, ""
}

func scoreTravelTypes(e models.Expert, c models.MatchCriteria) (float64, string) {
	if c.TypeFlexible || len(c.TravelTypes) == 0 {
		return weightTravelTypes, "Adapté à tous types de voyage"
	}
	var matched []string
	for _, t := range c.TravelTypes {
		if kws, ok := travelTypeMap[t]; ok && hasKeyword(e.Specializations, kws) {
			matched = append(matched, t)
		}
	}
	if len(matched) == 0 {
		return 0, ""
	}
	score := float64(len(matched)) / float64(len(c.TravelTypes)) * weightTravelTypes
	return score, "Spécialisé " + strings.Join(matched, ", ")
}

func scoreInterests(e models.Expert, c models.MatchCriteria) (float64, string) {
	if c.InterestFlexible || len(c.Interests) == 0 {
		return weightInterests, "Recommandations personnalisées"
	}
	matched := 0
	for _, interest := range c.Interests {
		if kws, ok := interestMap[interest]; ok && hasKeyword(e.Specializations, kws) {
			matched++
		}
	}
	if matched == 0 {
		return 0, ""
	}
	score := float64(matched) / float64(len(c.Interests)) * weightInterests
	return score, "Intérêts: " + strconv.Itoa(matched) + "/" + strconv.Itoa(len(c.Interests))
}

// minPrice extracts the lower bound of a range like "45-60€/h". Ranges
// with no digits fall back to 50.
func minPrice(priceRange string) int {
	m := firstNumber.FindString(priceRange)
	if m == "" {
		return 50
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 50
	}
	return n
}

// responseHours reads the hour count out of a label like "2h". Unparsable
// labels count as slow.
func responseHours(responseTime string) int {
	n, err := strconv.Atoi(firstNumber.FindString(responseTime))
	if err != nil {
		return 24
	}
	return n
}

func scoreBudget(e models.Expert, c models.MatchCriteria) (float64, string) {
	if c.BudgetFlexible || c.Budget == "" {
		return weightBudget, "Budget flexible"
	}
	price := minPrice(e.PriceRange)
	match := false
	target := 80
	switch c.Budget {
	case "low":
		match = price <= 50
		target = 40
	case "medium":
		match = price >= 45 && price <= 70
		target = 60
	case "high":
		match = price >= 60
	}
	if match {
		return weightBudget, "Budget compatible"
	}
	if math.Abs(float64(price-target)) <= 20 {
		return 7, "Budget proche"
	}
	return 0, ""
}

func scoreExperience(e models.Expert, c models.MatchCriteria) (float64, string) {
	if c.ExperienceFlexible || c.Experience == "" {
		return weightExperience, "Tous niveaux d'expérience"
	}
	years := e.ExperienceYears
	match := false
	switch c.Experience {
	case "beginner":
		match = years >= 3 && years <= 7
	case "intermediate":
		match = years >= 5 && years <= 10
	case "expert":
		match = years >= 8
	}
	if match {
		return weightExperience, strconv.Itoa(years) + " ans d'expérience"
	}
	return 5, "Expérience: " + strconv.Itoa(years) + " ans"
}

// Score rates one expert against the questionnaire (0..100) and explains
// every contribution. Flexible or empty criteria grant full weight.
func Score(e models.Expert, c models.MatchCriteria) (int, []string) {
	total := 0.0
	var reasons []string
	add := func(score float64, reason string) {
		total += score
		if reason != "" {
			reasons = append(reasons, reason)
		}
	}
	add(scoreDestination(e, c))
	add(scoreTravelTypes(e, c))
	add(scoreInterests(e, c))
	add(scoreBudget(e, c))
	add(scoreExperience(e, c))

	switch {
	case e.Rating >= 4.8:
		add(5, "Excellentes évaluations")
	case e.Rating >= 4.5:
		add(3, "Très bonnes évaluations")
	}
	switch hours := responseHours(e.ResponseTime); {
	case hours <= 2:
		add(3, "Très réactif")
	case hours <= 4:
		add(1, "")
	}
	switch {
	case e.TotalClients >= 100:
		add(2, "Très expérimenté")
	case e.TotalClients >= 50:
		add(1, "")
	}

	score := int(math.Round(total))
	if score > 100 {
		score = 100
	}
	return score, reasons
}

// Match scores every expert and sorts best first. Equal scores rank by
// rating, then by review count.
func Match(experts []models.Expert, c models.MatchCriteria) []models.MatchResult {
	results := make([]models.MatchResult, 0, len(experts))
	for _, e := range experts {
		score, reasons := Score(e, c)
		results = append(results, models.MatchResult{Expert: e, Score: score, Reasons: reasons})
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if results[i].Expert.Rating != results[j].Expert.Rating {
			return results[i].Expert.Rating > results[j].Expert.Rating
		}
		return results[i].Expert.ReviewsCount > results[j].Expert.ReviewsCount
	})
	return results
}
