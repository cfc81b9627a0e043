package listings

import (
	"math"
	"sort"

	"github.com/wavemarine/deckworth/internal/models"
)

// Summarize computes descriptive statistics over a comparable set. An empty
// set yields the zero-valued summary. For even-sized sets the median is the
// mean of the two central sorted values.
func Summarize(comps []models.Comparable) models.MarketSummary {
	if len(comps) == 0 {
		return models.MarketSummary{}
	}

	prices := make([]int, 0, len(comps))
	for _, c := range comps {
		prices = append(prices, c.Ask)
	}
	sort.Ints(prices)

	total := 0
	for _, p := range prices {
		total += p
	}

	n := len(prices)
	var median float64
	if n%2 == 0 {
		median = float64(prices[n/2-1]+prices[n/2]) / 2
	} else {
		median = float64(prices[n/2])
	}

	return models.MarketSummary{
		AvgPrice:    int(math.Round(float64(total) / float64(n))),
		MedianPrice: int(math.Round(median)),
		PriceRange: models.PriceRange{
			Min: prices[0],
			Max: prices[n-1],
		},
		SampleSize: n,
	}
}
