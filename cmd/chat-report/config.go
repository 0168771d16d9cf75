package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/theimaginaryfoundation/chat-dashboard/chatstats"
	"github.com/theimaginaryfoundation/chat-dashboard/chatstats/provider"
)

const (
	scorerLexicon = "vader"
	scorerOpenAI  = "openai"
)

type Config struct {
	InPaths          []string
	OutPath          string
	TopWords         int
	MinTokenLen      int
	IncludeNumbers   bool
	StopwordFiles    []string
	Languages        string
	MinLanguageShare float64
	Scorer           string
	Model            string
	APIKey           string
	Concurrency      int
	CacheDir         string
	ReferenceDate    string
	Pretty           bool
	Overwrite        bool
}

func (c Config) Validate() error {
	if len(c.InPaths) == 0 {
		return errors.New("missing -in (pass one or more chat export JSON files)")
	}
	if c.OutPath == "" {
		return errors.New("missing -out")
	}
	if c.TopWords < 0 {
		return errors.New("top-words must be >= 0")
	}
	if c.MinTokenLen < 0 {
		return errors.New("min-token-len must be >= 0")
	}
	if c.MinLanguageShare < 0 || c.MinLanguageShare > 1 {
		return errors.New("min-language-share must be within [0, 1]")
	}
	if c.Concurrency < 0 {
		return errors.New("concurrency must be >= 0")
	}
	if strings.TrimSpace(c.Languages) == "" {
		return errors.New("missing -languages (use auto or a comma list such as en,ms)")
	}
	switch c.Scorer {
	case scorerLexicon:
	case scorerOpenAI:
		if c.Model == "" {
			return errors.New("missing -model")
		}
	default:
		return fmt.Errorf("unknown -scorer %q (want %s or %s)", c.Scorer, scorerLexicon, scorerOpenAI)
	}
	if c.ReferenceDate != "" {
		if _, err := chatstats.ParseDay(c.ReferenceDate); err != nil {
			return fmt.Errorf("invalid -reference-date: %w", err)
		}
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		OutPath:          filepath.FromSlash("docs/chat-report.json"),
		TopWords:         chatstats.DefaultWordLimit,
		MinTokenLen:      1,
		Languages:        "auto",
		MinLanguageShare: 0.2,
		Scorer:           scorerLexicon,
		Model:            provider.DefaultModel,
		Concurrency:      4,
	}
}

// stringList collects a repeatable string flag.
type stringList []string

func (l *stringList) String() string {
	if l == nil {
		return ""
	}
	return strings.Join(*l, ",")
}

func (l *stringList) Set(v string) error {
	if strings.TrimSpace(v) == "" {
		return errors.New("empty value")
	}
	*l = append(*l, v)
	return nil
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()

	fs.SetOutput(os.Stderr)

	var ins, stops stringList
	fs.Var(&ins, "in", "Chat export JSON file (repeatable, in chronological order; positional args are appended)")
	fs.StringVar(&cfg.OutPath, "out", cfg.OutPath, "Path to write the report JSON to (- for stdout)")
	fs.IntVar(&cfg.TopWords, "top-words", cfg.TopWords, "Number of rows kept in the word frequency table (0 = default)")
	fs.IntVar(&cfg.MinTokenLen, "min-token-len", cfg.MinTokenLen, "Drop tokens shorter than this many characters")
	fs.BoolVar(&cfg.IncludeNumbers, "include-numbers", false, "Keep pure-digit tokens in the word table")
	fs.Var(&stops, "stopwords", "Extra stopword file, one word per line (repeatable)")
	fs.StringVar(&cfg.Languages, "languages", cfg.Languages, "Embedded stopword lists to apply: auto or a comma list (e.g. en,ms)")
	fs.Float64Var(&cfg.MinLanguageShare, "min-language-share", cfg.MinLanguageShare, "With -languages auto, minimum share of messages a language needs")
	fs.StringVar(&cfg.Scorer, "scorer", cfg.Scorer, "Sentiment scorer: vader (offline) or openai")
	fs.StringVar(&cfg.Model, "model", cfg.Model, "Model used by the openai scorer")
	fs.StringVar(&cfg.APIKey, "api-key", "", "OpenAI API key (defaults to OPENAI_API_KEY, .env is read when present)")
	fs.IntVar(&cfg.Concurrency, "concurrency", cfg.Concurrency, "Archives parsed and messages scored at once")
	fs.StringVar(&cfg.CacheDir, "cache-dir", "", "Directory for memoized reports keyed by input hash (empty = no cache)")
	fs.StringVar(&cfg.ReferenceDate, "reference-date", "", "Date the chat age is measured to, YYYY-MM-DD (default today)")
	fs.BoolVar(&cfg.Pretty, "pretty", false, "Pretty-print the report JSON")
	fs.BoolVar(&cfg.Overwrite, "overwrite", false, "Overwrite an existing report file")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage:\n  %s [flags] [export.json ...]\n\nFlags:\n", filepath.Base(os.Args[0]))
		fs.PrintDefaults()
		fmt.Fprintln(fs.Output(), "\nExamples:")
		fmt.Fprintln(fs.Output(), "  go run ./cmd/chat-report -in result.json -out report.json -pretty")
		fmt.Fprintln(fs.Output(), "  go run ./cmd/chat-report -languages en,ms -scorer openai -out - part1.json part2.json")
	}

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg.InPaths = append([]string(ins), fs.Args()...)
	for i, p := range cfg.InPaths {
		cfg.InPaths[i] = filepath.Clean(p)
	}
	cfg.StopwordFiles = []string(stops)
	if cfg.OutPath != "-" {
		cfg.OutPath = filepath.Clean(cfg.OutPath)
	}
	cfg.Languages = strings.ToLower(strings.TrimSpace(cfg.Languages))
	return cfg, nil
}
