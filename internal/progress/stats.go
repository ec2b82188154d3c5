package progress

import (
	"math"

	"github.com/example/langflix/pkg/models"
)

// Stats summarizes deck progress. totalWords comes from the deck itself since
// unseen words have no progress entry.
func Stats(deck models.DeckProgressMap, totalWords int) models.DeckStats {
	learned := 0
	for _, p := range deck {
		if p.IsLearned() {
			learned++
		}
	}

	stats := models.DeckStats{
		LearnedCount: learned,
		TotalCount:   totalWords,
	}
	if totalWords > 0 {
		stats.PercentLearned = int(math.Round(float64(learned) / float64(totalWords) * 100))
	}
	return stats
}

// DeckStatsFor summarizes only the entries keyed by words of the deck, so
// progress left behind by renamed or removed words is not counted.
func DeckStatsFor(deck models.DeckProgressMap, words []models.Word) models.DeckStats {
	scoped := make(models.DeckProgressMap, len(words))
	for _, w := range words {
		if p, ok := deck[w.Key()]; ok && w.Key() != "" {
			scoped[w.Key()] = p
		}
	}
	return Stats(scoped, len(words))
}
