package chatstats

import "time"

// Message is one chat entry from an exported archive.
type Message struct {
	ID     int64  `json:"id,omitempty"`
	Author string `json:"author"`

	// Text is every text entity fragment of the record joined in order, with no separator.
	// It is empty for media-only messages.
	Text string `json:"text,omitempty"`

	// Date is the calendar day of the message (UTC midnight).
	Date time.Time `json:"date"`

	// Timestamp is the full send time when the record carries one in the usual export layout.
	Timestamp time.Time `json:"timestamp,omitzero"`
}

// HasText reports whether the message carries any text.
func (m Message) HasText() bool {
	return m.Text != ""
}

// Archive is one parsed export file.
type Archive struct {
	Name     string    `json:"name,omitempty"`
	Messages []Message `json:"messages"`
}

// Corpus is the merged, ordered set of messages across all supplied archives.
type Corpus struct {
	Name     string    `json:"name,omitempty"`
	Messages []Message `json:"messages"`
}

// Len returns the number of messages in the corpus.
func (c Corpus) Len() int {
	return len(c.Messages)
}

// UserCount is one row of the user activity table.
type UserCount struct {
	Author string `json:"author"`
	Count  int    `json:"count"`
}

// DailyCount is one point of the daily message volume series.
type DailyCount struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}

// UserVerbosity pairs an author's message volume with their average words per message.
type UserVerbosity struct {
	Author        string  `json:"author"`
	TotalMessages int     `json:"total_messages"`
	AverageWords  float64 `json:"average_words"`
}

// TokenCount is one row of the word frequency table.
type TokenCount struct {
	Token string `json:"token"`
	Count int    `json:"count"`
}

// Overview holds the headline metrics for a chat.
type Overview struct {
	ChatName    string    `json:"chat_name,omitempty"`
	Users       int       `json:"users"`
	Messages    int       `json:"messages"`
	ChatAgeDays int       `json:"chat_age_days"`
	FirstDate   time.Time `json:"first_date,omitzero"`
	LastDate    time.Time `json:"last_date,omitzero"`
}
