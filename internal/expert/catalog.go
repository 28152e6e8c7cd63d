package expert

import (
	"github.com/lib/pq"
	"gorm.io/gorm"

	"wanderlink/backend/internal/logger"
	"wanderlink/backend/internal/models"
)

// expertRow is the experts table. Array columns use the Postgres array
// type instead of a join table; the catalog is tiny and read-mostly.
type expertRow struct {
	ID              string         `gorm:"primaryKey"`
	Pseudo          string         `gorm:"not null"`
	Specializations pq.StringArray `gorm:"type:text[]"`
	Destinations    pq.StringArray `gorm:"type:text[]"`
	Languages       pq.StringArray `gorm:"type:text[]"`
	Rating          float64
	ReviewsCount    int
	ExperienceYears int
	PriceRange      string
	ResponseTime    string
	TotalClients    int
	Description     string
}

func (expertRow) TableName() string { return "experts" }

func (r expertRow) toModel() models.Expert {
	return models.Expert{
		ID:              r.ID,
		Pseudo:          r.Pseudo,
		Specializations: r.Specializations,
		Destinations:    r.Destinations,
		Languages:       r.Languages,
		Rating:          r.Rating,
		ReviewsCount:    r.ReviewsCount,
		ExperienceYears: r.ExperienceYears,
		PriceRange:      r.PriceRange,
		ResponseTime:    r.ResponseTime,
		TotalClients:    r.TotalClients,
		Description:     r.Description,
	}
}

func fromModel(e models.Expert) expertRow {
	return expertRow{
		ID:              e.ID,
		Pseudo:          e.Pseudo,
		Specializations: e.Specializations,
		Destinations:    e.Destinations,
		Languages:       e.Languages,
		Rating:          e.Rating,
		ReviewsCount:    e.ReviewsCount,
		ExperienceYears: e.ExperienceYears,
		PriceRange:      e.PriceRange,
		ResponseTime:    e.ResponseTime,
		TotalClients:    e.TotalClients,
		Description:     e.Description,
	}
}

// Catalog serves expert profiles, from Postgres when available and from
// the built-in roster otherwise.
type Catalog struct {
	db *gorm.DB
}

// NewCatalog migrates the experts table and seeds the built-in roster on
// an empty table. A nil db yields a static catalog.
func NewCatalog(db *gorm.DB) (*Catalog, error) {
	c := &Catalog{db: db}
	if db == nil {
		return c, nil
	}
	if err := db.AutoMigrate(&expertRow{}); err != nil {
		return nil, err
	}
	var count int64
	if err := db.Model(&expertRow{}).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		rows := make([]expertRow, 0, len(defaultExperts))
		for _, e := range defaultExperts {
			rows = append(rows, fromModel(e))
		}
		if err := db.Create(&rows).Error; err != nil {
			return nil, err
		}
		logger.Log.Infow("expert catalog seeded", "experts", len(rows))
	}
	return c, nil
}

// List returns every expert profile.
func (c *Catalog) List() ([]models.Expert, error) {
	if c.db == nil {
		return DefaultExperts(), nil
	}
	var rows []expertRow
	if err := c.db.Order("rating desc").Find(&rows).Error; err != nil {
		return nil, err
	}
	experts := make([]models.Expert, 0, len(rows))
	for _, r := range rows {
		experts = append(experts, r.toModel())
	}
	return experts, nil
}

// Get returns one expert by id.
func (c *Catalog) Get(id string) (models.Expert, bool, error) {
	if c.db == nil {
		for _, e := range defaultExperts {
			if e.ID == id {
				return e, true, nil
			}
		}
		return models.Expert{}, false, nil
	}
	var row expertRow
	err := c.db.First(&row, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return models.Expert{}, false, nil
	}
	if err != nil {
		return models.Expert{}, false, err
	}
	return row.toModel(), true, nil
}

// Match runs the scorer over the full catalog.
func (c *Catalog) Match(criteria models.MatchCriteria) ([]models.MatchResult, error) {
	experts, err := c.List()
	if err != nil {
		return nil, err
	}
	return Match(experts, criteria), nil
}

// DefaultExperts returns a copy of the built-in roster.
func DefaultExperts() []models.Expert {
	out := make([]models.Expert, len(defaultExperts))
	copy(out, defaultExperts)
	return out
}

var defaultExperts = []models.Expert{
	{
		ID:              "1",
		Pseudo:          "Marie-Claire",
		Specializations: []string{"Voyage Solo", "Sécurité", "Culture Locale"},
		Destinations:    []string{"Japon", "Corée du Sud", "Taiwan", "Singapour"},
		Languages:       []string{"Français", "Anglais", "Japonais"},
		Rating:          4.9,
		ReviewsCount:    127,
		ExperienceYears: 8,
		PriceRange:      "45-60€/h",
		ResponseTime:    "2h",
		TotalClients:    89,
		Description:     "Passionnée par l'Asie depuis plus de 8 ans, je vous aide à découvrir les secrets du Japon et de la Corée du Sud.",
	},
	{
		ID:              "2",
		Pseudo:          "Alexandre",
		Specializations: []string{"Aventure", "Trekking", "Photo Nature"},
		Destinations:    []string{"Pérou", "Bolivie", "Équateur", "Chili", "Argentine"},
		Languages:       []string{"Français", "Espagnol", "Anglais"},
		Rating:          4.8,
		ReviewsCount:    94,
		ExperienceYears: 12,
		PriceRange:      "50-70€/h",
		ResponseTime:    "4h",
		TotalClients:    156,
		Description:     "Photographe et guide de montagne, j'organise des trekkings inoubliables en Amérique du Sud.",
	},
	{
		ID:              "3",
		Pseudo:          "Sophie",
		Specializations: []string{"Famille", "Budget Serré", "Enfants"},
		Destinations:    []string{"Espagne", "Portugal", "Italie", "Grèce", "France"},
		Languages:       []string{"Français", "Espagnol", "Italien"},
		Rating:          4.7,
		ReviewsCount:    203,
		ExperienceYears: 6,
		PriceRange:      "35-45€/h",
		ResponseTime:    "1h",
		TotalClients:    234,
		Description:     "Maman de 3 enfants, j'aide les familles à voyager sans se ruiner en Europe.",
	},
	{
		ID:              "4",
		Pseudo:          "Thomas",
		Specializations: []string{"Plongée", "Sports Nautiques", "Îles Tropicales"},
		Destinations:    []string{"Maldives", "Seychelles", "Thaïlande", "Philippines", "Indonésie"},
		Languages:       []string{"Français", "Anglais", "Thaï"},
		Rating:          4.9,
		ReviewsCount:    76,
		ExperienceYears: 10,
		PriceRange:      "55-75€/h",
		ResponseTime:    "3h",
		TotalClients:    67,
		Description:     "Instructeur de plongée professionnel, je vous guide vers les plus beaux spots sous-marins d'Asie du Sud-Est.",
	},
}
