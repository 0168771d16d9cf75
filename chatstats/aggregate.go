package chatstats

import (
	"sort"
	"strings"
	"time"
)

// ComputeUserActivity counts messages per author.
//
// Rows are ordered by descending count; equal counts keep the order in which the authors first
// appear in the corpus, so the table is deterministic for a given corpus.
func ComputeUserActivity(c Corpus) []UserCount {
	index := make(map[string]int)
	var rows []UserCount
	for _, m := range c.Messages {
		if m.Author == "" {
			continue
		}
		if i, ok := index[m.Author]; ok {
			rows[i].Count++
			continue
		}
		index[m.Author] = len(rows)
		rows = append(rows, UserCount{Author: m.Author, Count: 1})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Count > rows[j].Count
	})
	return rows
}

// ComputeDailyVolume counts messages per calendar date, oldest date first.
func ComputeDailyVolume(c Corpus) []DailyCount {
	counts := make(map[time.Time]int)
	for _, m := range c.Messages {
		if m.Date.IsZero() {
			continue
		}
		counts[Day(m.Date)]++
	}

	rows := make([]DailyCount, 0, len(counts))
	for d, n := range counts {
		rows = append(rows, DailyCount{Date: d, Count: n})
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Date.Before(rows[j].Date)
	})
	return rows
}

// ComputeUserVerbosity pairs each author's total message count with their average number of
// whitespace-separated words per non-empty message.
//
// Messages that contain no words are left out of the average. Authors with no such message at
// all have no defined average and are omitted. Rows follow ComputeUserActivity's order.
func ComputeUserVerbosity(c Corpus) []UserVerbosity {
	type wordTally struct {
		messages int
		words    int
	}
	tallies := make(map[string]*wordTally)
	for _, m := range c.Messages {
		if m.Author == "" {
			continue
		}
		n := len(strings.Fields(m.Text))
		if n == 0 {
			continue
		}
		t, ok := tallies[m.Author]
		if !ok {
			t = &wordTally{}
			tallies[m.Author] = t
		}
		t.messages++
		t.words += n
	}

	activity := ComputeUserActivity(c)
	rows := make([]UserVerbosity, 0, len(tallies))
	for _, a := range activity {
		t, ok := tallies[a.Author]
		if !ok {
			continue
		}
		rows = append(rows, UserVerbosity{
			Author:        a.Author,
			TotalMessages: a.Count,
			AverageWords:  float64(t.words) / float64(t.messages),
		})
	}
	return rows
}

const secondsPerDay = 24 * 60 * 60

// ComputeChatAge returns the absolute number of calendar days between two dates.
// Both times are reduced to their calendar date first, so the order of the arguments and the
// time of day do not matter.
func ComputeChatAge(first, reference time.Time) int {
	// Unix seconds rather than Sub, which saturates beyond about 292 years.
	days := int((Day(reference).Unix() - Day(first).Unix()) / secondsPerDay)
	if days < 0 {
		days = -days
	}
	return days
}

// ComputeOverview summarizes the corpus: distinct users, message count, first/last dates and the
// age of the chat (days from the first message to reference).
func ComputeOverview(c Corpus, reference time.Time) Overview {
	ov := Overview{ChatName: c.Name}
	users := make(map[string]struct{})
	for _, m := range c.Messages {
		if m.Author == "" {
			continue
		}
		users[m.Author] = struct{}{}
		ov.Messages++
	}
	ov.Users = len(users)

	if len(c.Messages) == 0 {
		return ov
	}
	// Archives arrive pre-sorted, so the first message dates the chat.
	ov.FirstDate = Day(c.Messages[0].Date)
	ov.LastDate = Day(c.Messages[len(c.Messages)-1].Date)
	ov.ChatAgeDays = ComputeChatAge(ov.FirstDate, reference)
	return ov
}
