package chatstats

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/theimaginaryfoundation/chat-dashboard/chatstats/stopwords"
)

// Report bundles every table derived from one corpus.
type Report struct {
	RunID       string    `json:"run_id"`
	InputKey    string    `json:"input_key,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`

	// StopwordLanguages lists the embedded stopword lists that were applied, when known.
	StopwordLanguages []string `json:"stopword_languages,omitempty"`

	Overview      Overview         `json:"overview"`
	UserActivity  []UserCount      `json:"user_activity"`
	DailyVolume   []DailyCount     `json:"daily_volume"`
	UserVerbosity []UserVerbosity  `json:"user_verbosity"`
	Words         []TokenCount     `json:"words"`
	Sentiment     SentimentSummary `json:"sentiment"`
}

// ReportDeps are the collaborators a report is computed with.
type ReportDeps struct {
	// Scorer rates message polarity. Nil selects the built-in VADER scorer.
	Scorer Scorer

	Stopwords stopwords.Set
}

// ReportOptions holds the knobs that change report contents.
type ReportOptions struct {
	Frequency FrequencyOptions
	Sentiment SentimentOptions

	// ReferenceDate is "today" for the chat age. Zero means the current UTC date; see Resolved.
	ReferenceDate time.Time

	// Now stamps GeneratedAt; nil uses time.Now.
	Now func() time.Time
}

// Resolved fills in the defaults that change report contents. An unset reference date becomes
// the current UTC day, so a key computed from the result differs from one day to the next.
func (o ReportOptions) Resolved() ReportOptions {
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.ReferenceDate.IsZero() {
		o.ReferenceDate = Day(o.Now().UTC())
	} else {
		o.ReferenceDate = Day(o.ReferenceDate)
	}
	return o
}

// BuildReport runs the aggregation, frequency and sentiment passes over c concurrently.
func BuildReport(ctx context.Context, c Corpus, deps ReportDeps, opts ReportOptions) (Report, error) {
	if ctx == nil {
		return Report{}, errors.New("BuildReport: ctx is nil")
	}
	scorer := deps.Scorer
	if scorer == nil {
		scorer = NewLexiconScorer()
	}
	opts = opts.Resolved()
	generated := opts.Now().UTC()
	ref := opts.ReferenceDate

	rep := Report{
		RunID:       uuid.NewString(),
		GeneratedAt: generated,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rep.Overview = ComputeOverview(c, ref)
		rep.UserActivity = ComputeUserActivity(c)
		rep.DailyVolume = ComputeDailyVolume(c)
		rep.UserVerbosity = ComputeUserVerbosity(c)
		return nil
	})
	g.Go(func() error {
		rep.Words = ComputeWordFrequency(c, deps.Stopwords, opts.Frequency)
		return nil
	})
	g.Go(func() error {
		res, err := AnalyzeSentiment(gctx, c, scorer, opts.Sentiment)
		if err != nil {
			return err
		}
		rep.Sentiment = res.Summary
		return nil
	})
	if err := g.Wait(); err != nil {
		return Report{}, fmt.Errorf("BuildReport: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return Report{}, fmt.Errorf("BuildReport: %w", err)
	}
	return rep, nil
}

// ScorerName identifies a scorer in cache keys. Scorers can name themselves with a Name method.
func ScorerName(s Scorer) string {
	if s == nil {
		return lexiconName
	}
	if n, ok := s.(interface{ Name() string }); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", s)
}

// InputKey hashes the raw archives, in order, together with everything that changes the report
// computed from them. Equal keys mean an identical report apart from RunID and GeneratedAt.
func InputKey(archives [][]byte, deps ReportDeps, opts ReportOptions) string {
	opts = opts.Resolved()
	h := sha256.New()
	writeField(h, []byte(strconv.Itoa(len(archives))))
	for _, a := range archives {
		writeField(h, a)
	}

	limit := opts.Frequency.Limit
	if limit <= 0 {
		limit = DefaultWordLimit
	}
	writeField(h, []byte(strconv.Itoa(limit)))
	writeField(h, []byte(strconv.Itoa(opts.Frequency.Tokenizer.MinLength)))
	writeField(h, []byte(strconv.FormatBool(opts.Frequency.Tokenizer.IncludeNumbers)))
	writeField(h, []byte(ScorerName(deps.Scorer)))
	writeField(h, []byte(FormatDay(opts.ReferenceDate)))
	for _, w := range deps.Stopwords.Words() {
		writeField(h, []byte(w))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func writeField(h hash.Hash, b []byte) {
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], uint64(len(b)))
	h.Write(n[:])
	h.Write(b)
}
