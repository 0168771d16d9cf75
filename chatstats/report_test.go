package chatstats

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/theimaginaryfoundation/chat-dashboard/chatstats/stopwords"
)

func TestBuildReport(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC)
	rep, err := BuildReport(context.Background(), exampleCorpus(), ReportDeps{
		Stopwords: stopwords.ForLanguages("en"),
	}, ReportOptions{
		ReferenceDate: day("2024-01-11"),
		Now:           func() time.Time { return fixed },
	})
	if err != nil {
		t.Fatalf("BuildReport: %v", err)
	}
	if rep.RunID == "" {
		t.Fatalf("missing RunID")
	}
	if !rep.GeneratedAt.Equal(fixed) {
		t.Fatalf("GeneratedAt=%v, want %v", rep.GeneratedAt, fixed)
	}
	if rep.Overview.ChatAgeDays != 10 || rep.Overview.Users != 2 {
		t.Fatalf("Overview=%+v", rep.Overview)
	}
	if len(rep.UserActivity) != 2 || len(rep.DailyVolume) != 2 || len(rep.UserVerbosity) != 2 {
		t.Fatalf("tables: activity=%d daily=%d verbosity=%d", len(rep.UserActivity), len(rep.DailyVolume), len(rep.UserVerbosity))
	}
	for _, w := range rep.Words {
		if w.Token == "there" || w.Token == "all" {
			t.Fatalf("stopword %q in words", w.Token)
		}
	}
	if rep.Sentiment.Total != 3 || len(rep.Sentiment.Categories) != 3 {
		t.Fatalf("Sentiment=%+v", rep.Sentiment)
	}

	// Without a reference date the chat age is measured to the generation time.
	rep, err = BuildReport(context.Background(), exampleCorpus(), ReportDeps{}, ReportOptions{
		Now: func() time.Time { return fixed },
	})
	if err != nil {
		t.Fatalf("BuildReport: %v", err)
	}
	if rep.Overview.ChatAgeDays != 19 {
		t.Fatalf("ChatAgeDays=%d, want 19", rep.Overview.ChatAgeDays)
	}
}

func TestBuildReport_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := BuildReport(ctx, exampleCorpus(), ReportDeps{}, ReportOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v, want context.Canceled", err)
	}
}

func TestInputKey(t *testing.T) {
	t.Parallel()

	archives := [][]byte{[]byte(`[1]`), []byte(`[2]`)}
	deps := ReportDeps{Stopwords: stopwords.New("a", "b")}
	opts := ReportOptions{ReferenceDate: day("2024-01-01")}

	k := InputKey(archives, deps, opts)
	if len(k) != 64 {
		t.Fatalf("key=%q, want 64 hex chars", k)
	}
	if k != InputKey(archives, deps, opts) {
		t.Fatalf("key is not stable")
	}

	// A zero limit means the default limit.
	withDefault := opts
	withDefault.Frequency.Limit = DefaultWordLimit
	if k != InputKey(archives, deps, withDefault) {
		t.Fatalf("explicit default limit changed the key")
	}

	changes := map[string]string{
		"order":     InputKey([][]byte{archives[1], archives[0]}, deps, opts),
		"split":     InputKey([][]byte{[]byte(`[1][2]`)}, deps, opts),
		"stopwords": InputKey(archives, ReportDeps{Stopwords: stopwords.New("a")}, opts),
		"date":      InputKey(archives, deps, ReportOptions{ReferenceDate: day("2024-01-02")}),
		"scorer":    InputKey(archives, ReportDeps{Stopwords: deps.Stopwords, Scorer: ScorerFunc(nil)}, opts),
	}
	for name, other := range changes {
		if other == k {
			t.Fatalf("%s: key unchanged", name)
		}
	}
}

func TestInputKey_DefaultReferenceDateFollowsToday(t *testing.T) {
	t.Parallel()

	archives := [][]byte{[]byte(`[{"date": "2024-01-01", "from": "a", "text_entities": []}]`)}
	corpus := Corpus{Messages: []Message{{Author: "a", Date: day("2024-01-01")}}}
	deps := ReportDeps{}
	onDay := func(s string) ReportOptions {
		now := day(s).Add(15 * time.Hour)
		return ReportOptions{Now: func() time.Time { return now }}
	}
	jan, mar := onDay("2024-01-10"), onDay("2024-03-10")

	if InputKey(archives, deps, jan) == InputKey(archives, deps, mar) {
		t.Fatalf("keys for different days are equal")
	}
	explicit := ReportOptions{ReferenceDate: day("2024-01-10")}
	if InputKey(archives, deps, jan) != InputKey(archives, deps, explicit) {
		t.Fatalf("unset reference date should key like the current day")
	}

	cache := NewMemoryCache()
	get := func(opts ReportOptions) (Report, bool) {
		t.Helper()
		r, hit, err := CachedReport(context.Background(), cache, InputKey(archives, deps, opts), func(ctx context.Context) (Report, error) {
			return BuildReport(ctx, corpus, deps, opts)
		})
		if err != nil {
			t.Fatalf("CachedReport: %v", err)
		}
		return r, hit
	}
	if r, hit := get(jan); hit || r.Overview.ChatAgeDays != 9 {
		t.Fatalf("jan: hit=%v age=%d, want miss and 9", hit, r.Overview.ChatAgeDays)
	}
	if r, hit := get(mar); hit || r.Overview.ChatAgeDays != 69 {
		t.Fatalf("mar: hit=%v age=%d, want miss and 69", hit, r.Overview.ChatAgeDays)
	}
	if r, hit := get(jan); !hit || r.Overview.ChatAgeDays != 9 {
		t.Fatalf("jan again: hit=%v age=%d, want hit and 9", hit, r.Overview.ChatAgeDays)
	}
}

func TestReportOptions_Resolved(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 6, 23, 30, 0, 0, time.UTC)
	got := ReportOptions{Now: func() time.Time { return now }}.Resolved()
	if !got.ReferenceDate.Equal(day("2024-05-06")) {
		t.Fatalf("ReferenceDate=%v, want 2024-05-06", got.ReferenceDate)
	}
	kept := ReportOptions{ReferenceDate: time.Date(2020, 2, 2, 8, 0, 0, 0, time.UTC)}.Resolved()
	if !kept.ReferenceDate.Equal(day("2020-02-02")) || kept.Now == nil {
		t.Fatalf("Resolved=%+v", kept)
	}
}

func TestScorerName(t *testing.T) {
	t.Parallel()

	if got := ScorerName(nil); got != "vader" {
		t.Fatalf("ScorerName(nil)=%q", got)
	}
	if got := ScorerName(NewLexiconScorer()); got != "vader" {
		t.Fatalf("ScorerName(vader)=%q", got)
	}
	if got := ScorerName(ScorerFunc(nil)); got != "chatstats.ScorerFunc" {
		t.Fatalf("ScorerName(func)=%q", got)
	}
}

func TestCachedReport_MemoryCache(t *testing.T) {
	t.Parallel()

	cache := NewMemoryCache()
	builds := 0
	build := func(context.Context) (Report, error) {
		builds++
		return Report{RunID: "run-1"}, nil
	}

	r, hit, err := CachedReport(context.Background(), cache, "k1", build)
	if err != nil || hit || r.InputKey != "k1" {
		t.Fatalf("first: r=%+v hit=%v err=%v", r, hit, err)
	}
	r, hit, err = CachedReport(context.Background(), cache, "k1", build)
	if err != nil || !hit || r.RunID != "run-1" {
		t.Fatalf("second: r=%+v hit=%v err=%v", r, hit, err)
	}
	if builds != 1 {
		t.Fatalf("builds=%d, want 1", builds)
	}

	boom := errors.New("boom")
	if _, _, err := CachedReport(context.Background(), cache, "k2", func(context.Context) (Report, error) {
		return Report{}, boom
	}); !errors.Is(err, boom) {
		t.Fatalf("err=%v, want boom", err)
	}
	if _, ok, _ := cache.Get("k2"); ok {
		t.Fatalf("failed build was cached")
	}

	if _, hit, err := CachedReport(context.Background(), nil, "k3", build); err != nil || hit {
		t.Fatalf("nil cache: hit=%v err=%v", hit, err)
	}
}

func TestDirCache(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "cache")
	c := DirCache{Dir: dir}
	key := InputKey([][]byte{[]byte("x")}, ReportDeps{}, ReportOptions{})

	if _, ok, err := c.Get(key); err != nil || ok {
		t.Fatalf("empty Get: ok=%v err=%v", ok, err)
	}
	want := Report{
		RunID:        "r",
		InputKey:     key,
		Overview:     Overview{ChatName: "demo", Messages: 3},
		UserActivity: []UserCount{{Author: "alice", Count: 2}},
		DailyVolume:  []DailyCount{{Date: day("2024-01-01"), Count: 2}},
	}
	if err := c.Put(key, want); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, key+".json")); err != nil {
		t.Fatalf("cache file: %v", err)
	}
	got, ok, err := c.Get(key)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if got.RunID != "r" || got.Overview.ChatName != "demo" || len(got.UserActivity) != 1 {
		t.Fatalf("got=%+v", got)
	}
	if !got.DailyVolume[0].Date.Equal(day("2024-01-01")) {
		t.Fatalf("date=%v", got.DailyVolume[0].Date)
	}

	if err := c.Put("../escape", want); err == nil {
		t.Fatalf("expected error for non-hex key")
	}
	if _, _, err := (DirCache{}).Get(key); err == nil {
		t.Fatalf("expected error for empty dir")
	}
}
