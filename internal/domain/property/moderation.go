package property

import (
	"regexp"
	"strings"
)

const passScore = 70

var phonePattern = regexp.MustCompile(`[+(]?[1-9][0-9 .\-()]{8,}[0-9]`)

// Moderator scores new listings. A listing that scores below the pass mark
// is published as suspicious for an admin to look at, never rejected.
type Moderator struct {
	SpamKeywords []string
	// AveragePrice per type, in AverageCurrency. Listings in other
	// currencies skip the price check.
	AveragePrice    map[Type]float64
	AverageCurrency string
	// MaxDailyListings per owner before new ones count as suspicious.
	MaxDailyListings int64
}

func DefaultModerator() *Moderator {
	return &Moderator{
		SpamKeywords: []string{"купить", "продать", "срочно", "недорого", "sotiladi", "urgent", "cheap", "sale"},
		AveragePrice: map[Type]float64{
			TypeApartment:  200_000_000,
			TypeHouse:      500_000_000,
			TypeCommercial: 300_000_000,
		},
		AverageCurrency:  "UZS",
		MaxDailyListings: 5,
	}
}

// Score starts at 100 and subtracts for spam wording, contact details in the
// text, an outlier price and a burst of listings from the same owner.
func (m *Moderator) Score(p *Property, createdToday int64) int {
	score := 100

	if p.Description != "" {
		desc := strings.ToLower(p.Description)
		hits := 0
		for _, kw := range m.SpamKeywords {
			if strings.Contains(desc, kw) {
				hits++
			}
		}
		if hits > 3 {
			score -= 20
		}
		if phonePattern.MatchString(p.Description) {
			score -= 15
		}
	}

	if avg, ok := m.AveragePrice[p.Type]; ok && p.Currency == m.AverageCurrency {
		if p.Price < avg*0.3 || p.Price > avg*1.7 {
			score -= 25
		}
	}

	if m.MaxDailyListings > 0 && createdToday >= m.MaxDailyListings {
		score -= 40
	}
	return score
}

func (m *Moderator) Passes(score int) bool {
	return score >= passScore
}
