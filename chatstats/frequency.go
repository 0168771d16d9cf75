package chatstats

import (
	"sort"

	"github.com/theimaginaryfoundation/chat-dashboard/chatstats/stopwords"
)

// DefaultWordLimit is the number of rows kept in a word table when no limit is given.
const DefaultWordLimit = 100

// FrequencyOptions controls ComputeWordFrequency.
type FrequencyOptions struct {
	// Limit caps the table to the most frequent tokens (<= 0 uses DefaultWordLimit).
	Limit int

	Tokenizer Tokenizer
}

// ComputeWordFrequency counts tokens over every non-empty message, skipping stopwords.
//
// The result holds at most Limit rows ordered by descending count. Tokens with equal counts keep
// the order in which they were first encountered, which also settles ties at the cutoff.
func ComputeWordFrequency(c Corpus, stop stopwords.Set, opts FrequencyOptions) []TokenCount {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultWordLimit
	}

	index := make(map[string]int)
	var rows []TokenCount
	for _, m := range c.Messages {
		if !m.HasText() {
			continue
		}
		for _, tok := range opts.Tokenizer.Tokens(m.Text) {
			if stop.Contains(tok) {
				continue
			}
			if i, ok := index[tok]; ok {
				rows[i].Count++
				continue
			}
			index[tok] = len(rows)
			rows = append(rows, TokenCount{Token: tok, Count: 1})
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Count > rows[j].Count
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}
