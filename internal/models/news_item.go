package models

import "time"

// Sentiment is the traffic-light classification of an item.
type Sentiment string

const (
	SentimentRed    Sentiment = "red"
	SentimentYellow Sentiment = "yellow"
	SentimentGreen  Sentiment = "green"
)

// Valid reports whether s is one of the three known buckets.
func (s Sentiment) Valid() bool {
	return s == SentimentRed || s == SentimentYellow || s == SentimentGreen
}

// Section is one of the fixed topical buckets items are grouped into.
type Section string

const (
	SectionCancilleria Section = "Cancilleria"
	SectionPeru        Section = "Peru"
	SectionMundo       Section = "Mundo"
)

// Valid reports whether s is one of the fixed sections.
func (s Section) Valid() bool {
	return s == SectionCancilleria || s == SectionPeru || s == SectionMundo
}

// Sections lists every configured section in display order.
func Sections() []Section {
	return []Section{SectionCancilleria, SectionPeru, SectionMundo}
}

// NewsItem represents a row in the 'news' table. The link is the primary
// key; a second occurrence of the same link is never written.
type NewsItem struct {
	Link          string    `db:"link" json:"link"`
	Title         string    `db:"title" json:"title"`
	Summary       string    `db:"summary" json:"summary"`
	Section       Section   `db:"section" json:"section"`
	PublishedDate time.Time `db:"published_date" json:"published_date"`
	Sentiment     Sentiment `db:"sentiment" json:"sentiment"`
	Source        string    `db:"source" json:"source"`
}
