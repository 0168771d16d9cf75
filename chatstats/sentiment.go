package chatstats

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/theimaginaryfoundation/chat-dashboard/chatstats/fileutils"
)

// Category is a sentiment bucket.
type Category string

const (
	Positive Category = "Positive"
	Neutral  Category = "Neutral"
	Negative Category = "Negative"
)

// Categories lists every bucket in report order.
var Categories = []Category{Positive, Neutral, Negative}

// Classify buckets a polarity score by its sign. Exactly 0 is Neutral.
func Classify(score float64) Category {
	switch {
	case score > 0:
		return Positive
	case score < 0:
		return Negative
	default:
		return Neutral
	}
}

// Scorer rates the polarity of a text on [-1, 1]: negative is unfavorable, positive favorable.
type Scorer interface {
	Score(ctx context.Context, text string) (float64, error)
}

// ScorerFunc adapts a function to Scorer.
type ScorerFunc func(ctx context.Context, text string) (float64, error)

func (f ScorerFunc) Score(ctx context.Context, text string) (float64, error) {
	return f(ctx, text)
}

// SentimentRecord is the score and bucket of one corpus message.
type SentimentRecord struct {
	Index    int       `json:"index"`
	Author   string    `json:"author"`
	Date     time.Time `json:"date"`
	Score    float64   `json:"score"`
	Category Category  `json:"category"`
}

// CategorySummary aggregates one bucket. Fraction is Count over every scored message.
type CategorySummary struct {
	Category Category `json:"category"`
	ScoreSum float64  `json:"score_sum"`
	Count    int      `json:"count"`
	Fraction float64  `json:"fraction"`
}

// Warning describes a message that was left out of the sentiment summary.
type Warning struct {
	Index   int    `json:"index"`
	Author  string `json:"author,omitempty"`
	Excerpt string `json:"excerpt,omitempty"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (w Warning) String() string {
	return fmt.Sprintf("message %d (%s): %s", w.Index, w.Author, w.Message)
}

// SentimentSummary is the per-bucket distribution over all scored messages.
// Categories always holds one row per bucket, in Categories order.
type SentimentSummary struct {
	Total      int               `json:"total"`
	Categories []CategorySummary `json:"categories"`
	Warnings   []Warning         `json:"warnings,omitempty"`
}

// Fraction returns the share of scored messages that fell into cat.
func (s SentimentSummary) Fraction(cat Category) float64 {
	for _, c := range s.Categories {
		if c.Category == cat {
			return c.Fraction
		}
	}
	return 0
}

// SentimentResult carries the per-message records and their summary.
type SentimentResult struct {
	Records []SentimentRecord
	Summary SentimentSummary
}

// SentimentOptions controls AnalyzeSentiment.
type SentimentOptions struct {
	// Concurrency is the number of messages scored at once (<= 0 scores one at a time).
	Concurrency int

	// ExcerptChars bounds the message excerpt stored in warnings (defaults to 80).
	ExcerptChars int
}

type scoreOutcome struct {
	score float64
	err   error
}

// AnalyzeSentiment scores every message that has text and summarizes the buckets.
//
// A message whose score cannot be obtained, or falls outside [-1, 1], is left out of the summary
// and reported as a warning; the rest of the pass continues. The returned error is only for
// invalid arguments.
func AnalyzeSentiment(ctx context.Context, c Corpus, scorer Scorer, opts SentimentOptions) (SentimentResult, error) {
	if ctx == nil {
		return SentimentResult{}, errors.New("AnalyzeSentiment: ctx is nil")
	}
	if scorer == nil {
		return SentimentResult{}, errors.New("AnalyzeSentiment: scorer is nil")
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.ExcerptChars <= 0 {
		opts.ExcerptChars = 80
	}

	var eligible []int
	for i, m := range c.Messages {
		if m.HasText() {
			eligible = append(eligible, i)
		}
	}

	outcomes := make([]scoreOutcome, len(eligible))
	var g errgroup.Group
	g.SetLimit(opts.Concurrency)
	for k, idx := range eligible {
		k, idx := k, idx
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				outcomes[k] = scoreOutcome{err: err}
				return nil
			}
			s, err := scorer.Score(ctx, c.Messages[idx].Text)
			outcomes[k] = scoreOutcome{score: s, err: err}
			return nil
		})
	}
	_ = g.Wait()

	var (
		records  = make([]SentimentRecord, 0, len(eligible))
		warnings []Warning
	)
	for k, idx := range eligible {
		m := c.Messages[idx]
		o := outcomes[k]
		err := o.err
		if err == nil {
			err = checkScore(o.score)
		}
		if err != nil {
			warnings = append(warnings, Warning{
				Index:   idx,
				Author:  m.Author,
				Excerpt: fileutils.Truncate(fileutils.SanitizeNewlines(m.Text), opts.ExcerptChars),
				Message: err.Error(),
				Err:     err,
			})
			continue
		}
		records = append(records, SentimentRecord{
			Index:    idx,
			Author:   m.Author,
			Date:     m.Date,
			Score:    o.score,
			Category: Classify(o.score),
		})
	}

	summary := SummarizeSentiment(records)
	summary.Warnings = warnings
	return SentimentResult{Records: records, Summary: summary}, nil
}

func checkScore(s float64) error {
	if math.IsNaN(s) || s < -1 || s > 1 {
		return fmt.Errorf("score %v outside [-1, 1]", s)
	}
	return nil
}

// SummarizeSentiment sums scores and counts per bucket and normalizes the counts into fractions
// of len(records). With no records every fraction is 0.
func SummarizeSentiment(records []SentimentRecord) SentimentSummary {
	byCat := make(map[Category]*CategorySummary, len(Categories))
	out := SentimentSummary{
		Total:      len(records),
		Categories: make([]CategorySummary, len(Categories)),
	}
	for i, cat := range Categories {
		out.Categories[i] = CategorySummary{Category: cat}
		byCat[cat] = &out.Categories[i]
	}

	for _, r := range records {
		cs, ok := byCat[r.Category]
		if !ok {
			continue
		}
		cs.ScoreSum += r.Score
		cs.Count++
	}
	if out.Total == 0 {
		return out
	}
	for i := range out.Categories {
		out.Categories[i].Fraction = float64(out.Categories[i].Count) / float64(out.Total)
	}
	return out
}
