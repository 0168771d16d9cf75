package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/theimaginaryfoundation/chat-dashboard/chatstats"
	"github.com/theimaginaryfoundation/chat-dashboard/chatstats/fileutils"
	"github.com/theimaginaryfoundation/chat-dashboard/chatstats/provider"
	"github.com/theimaginaryfoundation/chat-dashboard/chatstats/stopwords"
)

// errUsage marks failures caused by the invocation rather than the inputs.
var errUsage = errors.New("usage")

func main() {
	cfg, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	// A missing .env is fine; the key may come from the environment or -api-key.
	_ = godotenv.Load()
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := run(ctx, cfg, os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}

	summary := os.Stdout
	if cfg.OutPath == "-" {
		summary = os.Stderr
	}
	fmt.Fprintf(summary, "archives=%d messages=%d users=%d words=%d scored=%d warnings=%d cache_hit=%t out=%s\n",
		res.Archives, res.Report.Overview.Messages, res.Report.Overview.Users, len(res.Report.Words),
		res.Report.Sentiment.Total, len(res.Report.Sentiment.Warnings), res.CacheHit, cfg.OutPath)
}

type runResult struct {
	Report   chatstats.Report
	Archives int
	CacheHit bool
}

func run(ctx context.Context, cfg Config, stdout, stderr io.Writer) (runResult, error) {
	if !cfg.Overwrite && cfg.OutPath != "-" && fileutils.FileExists(cfg.OutPath) {
		return runResult{}, fmt.Errorf("%w: output already exists: %s (pass -overwrite)", errUsage, cfg.OutPath)
	}

	raws := make([][]byte, 0, len(cfg.InPaths))
	for _, p := range cfg.InPaths {
		b, err := os.ReadFile(p)
		if err != nil {
			return runResult{}, fmt.Errorf("%w: read input: %v", errUsage, err)
		}
		raws = append(raws, b)
	}

	readers := make([]io.Reader, len(raws))
	for i, b := range raws {
		readers[i] = bytes.NewReader(b)
	}
	start := time.Now()
	archives, err := chatstats.ParseArchives(ctx, readers, cfg.Concurrency)
	if err != nil {
		return runResult{}, err
	}
	corpus := chatstats.Merge(archives...)
	fmt.Fprintf(stderr, "parsed archives=%d messages=%d elapsed=%s\n", len(archives), corpus.Len(), time.Since(start).Round(time.Millisecond))

	stop, langs, err := buildStopwords(cfg, corpus)
	if err != nil {
		return runResult{}, err
	}
	scorer, err := buildScorer(cfg)
	if err != nil {
		return runResult{}, err
	}

	deps := chatstats.ReportDeps{Scorer: scorer, Stopwords: stop}
	opts := chatstats.ReportOptions{
		Frequency: chatstats.FrequencyOptions{
			Limit: cfg.TopWords,
			Tokenizer: chatstats.Tokenizer{
				IncludeNumbers: cfg.IncludeNumbers,
				MinLength:      cfg.MinTokenLen,
			},
		},
		Sentiment: chatstats.SentimentOptions{Concurrency: sentimentConcurrency(cfg)},
	}
	if cfg.ReferenceDate != "" {
		// Validate already checked the format.
		opts.ReferenceDate, _ = chatstats.ParseDay(cfg.ReferenceDate)
	}
	// Pin "today" once so the cache key and the report agree on it.
	opts = opts.Resolved()

	var cache chatstats.ReportCache
	if cfg.CacheDir != "" {
		cache = chatstats.DirCache{Dir: cfg.CacheDir}
	}
	key := chatstats.InputKey(raws, deps, opts)
	rep, hit, err := chatstats.CachedReport(ctx, cache, key, func(ctx context.Context) (chatstats.Report, error) {
		r, err := chatstats.BuildReport(ctx, corpus, deps, opts)
		if err != nil {
			return chatstats.Report{}, err
		}
		r.StopwordLanguages = langs
		return r, nil
	})
	if err != nil {
		return runResult{}, err
	}
	for _, w := range rep.Sentiment.Warnings {
		fmt.Fprintf(stderr, "warning: %s\n", w.String())
	}

	if err := writeReport(cfg, rep, stdout); err != nil {
		return runResult{}, err
	}
	return runResult{Report: rep, Archives: len(archives), CacheHit: hit}, nil
}

// sentimentConcurrency keeps the offline scorer single-threaded; it is CPU bound and cheap.
func sentimentConcurrency(cfg Config) int {
	if cfg.Scorer == scorerOpenAI {
		return cfg.Concurrency
	}
	return 1
}

func buildStopwords(cfg Config, corpus chatstats.Corpus) (stopwords.Set, []string, error) {
	var langs []string
	if cfg.Languages == "auto" {
		texts := make([]string, 0, corpus.Len())
		for _, m := range corpus.Messages {
			if m.HasText() {
				texts = append(texts, m.Text)
			}
		}
		for _, code := range stopwords.Detect(texts, cfg.MinLanguageShare) {
			if _, ok := stopwords.ForLanguage(code); ok {
				langs = append(langs, code)
			}
		}
		if len(langs) == 0 {
			langs = []string{"en"}
		}
	} else {
		for _, code := range strings.Split(cfg.Languages, ",") {
			code = strings.TrimSpace(code)
			if code == "" {
				continue
			}
			if _, ok := stopwords.ForLanguage(code); !ok {
				return stopwords.Set{}, nil, fmt.Errorf("%w: no stopword list for language %q (available: %s)",
					errUsage, code, strings.Join(stopwords.Available(), ","))
			}
			langs = append(langs, code)
		}
	}

	set := stopwords.ForLanguages(langs...)
	for _, p := range cfg.StopwordFiles {
		extra, err := loadStopwordFile(p)
		if err != nil {
			return stopwords.Set{}, nil, err
		}
		set = set.Union(extra)
	}
	return set, langs, nil
}

func loadStopwordFile(path string) (stopwords.Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return stopwords.Set{}, fmt.Errorf("%w: open stopwords: %v", errUsage, err)
	}
	defer f.Close()
	s, err := stopwords.Load(f)
	if err != nil {
		return stopwords.Set{}, fmt.Errorf("load stopwords %s: %w", path, err)
	}
	return s, nil
}

func buildScorer(cfg Config) (chatstats.Scorer, error) {
	if cfg.Scorer != scorerOpenAI {
		return chatstats.NewLexiconScorer(), nil
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: missing OPENAI_API_KEY (or pass -api-key)", errUsage)
	}
	s, err := provider.NewOpenAIScorer(cfg.APIKey, cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errUsage, err)
	}
	return s, nil
}

func writeReport(cfg Config, rep chatstats.Report, stdout io.Writer) error {
	if cfg.OutPath == "-" {
		b, err := fileutils.MarshalJSON(rep, cfg.Pretty)
		if err != nil {
			return fmt.Errorf("marshal report: %w", err)
		}
		if _, err := stdout.Write(append(b, '\n')); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		return nil
	}
	if err := fileutils.WriteJSONFile(cfg.OutPath, rep, cfg.Pretty, cfg.Overwrite); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
