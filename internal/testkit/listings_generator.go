package testkit

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"
	"time"
)

// ListingsGeneratorConfig configures the listings export generator
type ListingsGeneratorConfig struct {
	Rows        int     `json:"rows"`
	MissingRate float64 `json:"missing_rate"`
	Seed        int64   `json:"seed"`
}

// DefaultListingsConfig returns sensible defaults for listings generation
func DefaultListingsConfig() ListingsGeneratorConfig {
	return ListingsGeneratorConfig{
		Rows:        200,
		MissingRate: 0.1,
		Seed:        42,
	}
}

// ListingsHeader is the column layout of the short-term rental listings export
var ListingsHeader = []string{
	"id", "name", "host_id", "host_name", "neighbourhood_group", "neighbourhood",
	"latitude", "longitude", "room_type", "price", "minimum_nights",
	"number_of_reviews", "last_review", "reviews_per_month",
	"calculated_host_listings_count", "availability_365",
}

var (
	boroughs = map[string][]string{
		"Brooklyn":      {"Williamsburg", "Bedford-Stuyvesant", "Bushwick", "Kensington"},
		"Manhattan":     {"Harlem", "Midtown", "East Village", "Upper West Side"},
		"Queens":        {"Astoria", "Long Island City", "Flushing"},
		"Bronx":         {"Mott Haven", "Fordham"},
		"Staten Island": {"St. George"},
	}
	boroughOrder = []string{"Brooklyn", "Manhattan", "Queens", "Bronx", "Staten Island"}
	roomTypes    = []string{"Entire home/apt", "Private room", "Shared room"}
	adjectives   = []string{"Cozy", "Sunny", "Spacious", "Quiet", "Charming", "Modern"}
	nouns        = []string{"loft", "studio", "apartment", "room", "brownstone", "suite"}
	hostNames    = []string{"John", "Jennifer", "Elisabeth", "LisaRoxanne", "Laura", "Chris", "Garon", "Shunichi"}
)

// ListingsGenerator generates a realistic listings CSV
type ListingsGenerator struct {
	config ListingsGeneratorConfig
	rng    *rand.Rand
}

// NewListingsGenerator creates a new listings generator
func NewListingsGenerator(config ListingsGeneratorConfig) *ListingsGenerator {
	return &ListingsGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// GenerateRows returns the header followed by config.Rows records
func (g *ListingsGenerator) GenerateRows() [][]string {
	rows := make([][]string, 0, g.config.Rows+1)
	rows = append(rows, append([]string(nil), ListingsHeader...))

	start := time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < g.config.Rows; i++ {
		borough := boroughOrder[g.rng.Intn(len(boroughOrder))]
		hoods := boroughs[borough]
		reviews := g.rng.Intn(300)

		lastReview := start.AddDate(0, 0, g.rng.Intn(540)).Format("2006-01-02")
		perMonth := strconv.FormatFloat(float64(reviews)/12.0, 'f', 2, 64)
		if reviews == 0 {
			lastReview, perMonth = "", ""
		}

		row := []string{
			strconv.Itoa(2539 + i*7),
			fmt.Sprintf("%s %s in %s", adjectives[g.rng.Intn(len(adjectives))], nouns[g.rng.Intn(len(nouns))], hoods[0]),
			strconv.Itoa(2787 + g.rng.Intn(5000)),
			hostNames[g.rng.Intn(len(hostNames))],
			borough,
			hoods[g.rng.Intn(len(hoods))],
			strconv.FormatFloat(40.5+g.rng.Float64()*0.4, 'f', 5, 64),
			strconv.FormatFloat(-74.2+g.rng.Float64()*0.5, 'f', 5, 64),
			roomTypes[g.rng.Intn(len(roomTypes))],
			strconv.Itoa(40 + g.rng.Intn(400)),
			strconv.Itoa(1 + g.rng.Intn(30)),
			strconv.Itoa(reviews),
			lastReview,
			perMonth,
			strconv.Itoa(1 + g.rng.Intn(10)),
			strconv.Itoa(g.rng.Intn(366)),
		}
		g.punchHoles(row)
		rows = append(rows, row)
	}
	return rows
}

// punchHoles blanks optional cells at the configured rate; id and the
// excluded identity columns are never blanked so every other column keeps observed values
func (g *ListingsGenerator) punchHoles(row []string) {
	for _, j := range []int{4, 8, 9, 10, 15} {
		if g.rng.Float64() < g.config.MissingRate {
			row[j] = ""
		}
	}
}

// WriteCSV writes the generated rows to w
func (g *ListingsGenerator) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.WriteAll(g.GenerateRows()); err != nil {
		return fmt.Errorf("failed to write listings: %w", err)
	}
	return nil
}

// WriteToFile writes the generated listings CSV to path
func (g *ListingsGenerator) WriteToFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	return g.WriteCSV(f)
}
