package models

// Video is a catalog entry linking a playable video to its vocabulary deck
type Video struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	ThumbnailURL string `json:"thumbnailUrl"`
	VideoURL     string `json:"videoUrl"`
	DeckID       string `json:"deckId"`
}

// Subtitle is a caption line shown between StartTime and EndTime (seconds, inclusive)
type Subtitle struct {
	StartTime float64 `json:"startTime"`
	EndTime   float64 `json:"endTime"`
	Text      string  `json:"text"`
}
