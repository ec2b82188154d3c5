package models

// Deck is a named, ordered collection of words belonging to one video
type Deck struct {
	ID    string `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Words []Word `json:"words"`
}

// DeckStats summarizes how much of a deck a user has learned
type DeckStats struct {
	LearnedCount   int `json:"learnedCount"`
	TotalCount     int `json:"totalCount"`
	PercentLearned int `json:"percentLearned"`
}

// DeckSummary is a deck annotated with the caller's stats
type DeckSummary struct {
	Deck
	DeckStats
}

// FindWord returns the word answered by spanish. The canonical translation is
// matched first across the whole deck, then any accepted variant.
func (d Deck) FindWord(spanish string) (Word, bool) {
	for _, w := range d.Words {
		if w.Key() != "" && w.Key() == spanish {
			return w, true
		}
	}
	for _, w := range d.Words {
		for _, variant := range w.Spanish {
			if variant == spanish {
				return w, true
			}
		}
	}
	return Word{}, false
}
