package waterparks

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

// CatalogEntry identifies one known park.
type CatalogEntry struct {
	ID       string
	Name     string
	Location string
}

// Catalog is the fixed set of parks the mock generator knows about.
var Catalog = []CatalogEntry{
	{ID: "1", Name: "Aqua Paradise", Location: "Cancún"},
	{ID: "2", Name: "Olas del Sol", Location: "Acapulco"},
	{ID: "3", Name: "Cascada Azul", Location: "Guadalajara"},
	{ID: "4", Name: "Río Salvaje", Location: "Monterrey"},
	{ID: "5", Name: "Laguna Tropical", Location: "Mérida"},
}

// ParkName returns the catalog name of id.
func ParkName(id string) (string, bool) {
	for _, c := range Catalog {
		if c.ID == id {
			return c.Name, true
		}
	}
	return "", false
}

var checkerNames = []string{
	"Ana López", "Carlos Méndez", "Lucía Ramírez", "Jorge Herrera",
	"María Torres", "Diego Castillo", "Sofía Navarro", "Miguel Ángel Ruiz",
}

// MockSource generates park aggregates deterministically from Seed.
type MockSource struct {
	Seed uint64
}

func (m MockSource) ListParks(_ context.Context) ([]WaterPark, error) {
	parks := make([]WaterPark, 0, len(Catalog))
	for _, c := range Catalog {
		r := m.rng(c.ID)
		sold := int64(5000 + r.IntN(15000))
		price := 250 + r.Float64()*200
		parks = append(parks, WaterPark{
			ID:              c.ID,
			Name:            c.Name,
			Location:        c.Location,
			ActiveTickets:   int64(100 + r.IntN(1400)),
			SoldTickets:     sold,
			PrintedTickets:  int64(float64(sold) * (0.85 + r.Float64()*0.15)),
			InactiveTickets: int64(r.IntN(300)),
			TotalRevenue:    roundCents(float64(sold) * price),
		})
	}
	return parks, nil
}

func (m MockSource) rng(parts ...string) *rand.Rand {
	h := fnv.New64a()
	_, _ = h.Write([]byte(strings.Join(parts, "|")))
	return rand.New(rand.NewPCG(m.Seed, h.Sum64()))
}

func (m MockSource) checkers(park WaterPark) []Checker {
	r := m.rng(park.ID, "checkers")
	n := 4 + r.IntN(3)
	domain := strings.ToLower(strings.ReplaceAll(asciiFold(park.Name), " ", ""))
	perm := r.Perm(len(checkerNames))
	out := make([]Checker, 0, n)
	for i := 0; i < n; i++ {
		name := checkerNames[perm[i]]
		first := strings.ToLower(asciiFold(strings.Fields(name)[0]))
		out = append(out, Checker{
			ID:          park.ID + "-c" + strconv.Itoa(i+1),
			Name:        name,
			Email:       first + strconv.Itoa(i+1) + "@" + domain + ".com",
			SoldTickets: int64(50 + r.IntN(750)),
		})
	}
	return out
}

func (m MockSource) daily(parkID string, day time.Time) DailyStats {
	date := day.Format(time.DateOnly)
	r := m.rng(parkID, "day", date)
	tickets := 100 + r.IntN(800)
	if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
		tickets = tickets * 3 / 2
	}
	return DailyStats{
		Date:    date,
		Tickets: int64(tickets),
		Revenue: roundCents(float64(tickets) * (250 + r.Float64()*200)),
	}
}

func (m MockSource) monthly(parkID string, month time.Time) MonthlyStats {
	label := month.Format("2006-01")
	r := m.rng(parkID, "month", label)
	tickets := 5000 + r.IntN(20000)
	return MonthlyStats{
		Month:   label,
		Tickets: int64(tickets),
		Revenue: roundCents(float64(tickets) * (250 + r.Float64()*200)),
	}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

var folds = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ñ", "n",
	"Á", "A", "É", "E", "Í", "I", "Ó", "O", "Ú", "U", "Ñ", "N",
)

func asciiFold(s string) string { return folds.Replace(s) }
