package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type Config struct {
	InPaths     []string
	OutPath     string
	Concurrency int
	Pretty      bool
	Overwrite   bool
}

func (c Config) Validate() error {
	if len(c.InPaths) == 0 {
		return errors.New("missing -in (pass one or more chat export JSON files)")
	}
	if c.OutPath == "" {
		return errors.New("missing -out")
	}
	if c.Concurrency < 0 {
		return errors.New("concurrency must be >= 0")
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		OutPath:     filepath.FromSlash("docs/merged.json"),
		Concurrency: 4,
	}
}

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

	var ins stringList
	fs.Var(&ins, "in", "Chat export JSON file (repeatable, in chronological order; positional args are appended)")
	fs.StringVar(&cfg.OutPath, "out", cfg.OutPath, "Path to write the merged export to")
	fs.IntVar(&cfg.Concurrency, "concurrency", cfg.Concurrency, "Archives parsed at once (0 = all)")
	fs.BoolVar(&cfg.Pretty, "pretty", false, "Pretty-print the merged export")
	fs.BoolVar(&cfg.Overwrite, "overwrite", false, "Overwrite an existing output file")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage:\n  %s [flags] [export.json ...]\n\nFlags:\n", filepath.Base(os.Args[0]))
		fs.PrintDefaults()
		fmt.Fprintln(fs.Output(), "\nExamples:")
		fmt.Fprintln(fs.Output(), "  go run ./cmd/archive-merge -out merged.json 2023.json 2024.json")
	}

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg.InPaths = append([]string(ins), fs.Args()...)
	for i, p := range cfg.InPaths {
		cfg.InPaths[i] = filepath.Clean(p)
	}
	cfg.OutPath = filepath.Clean(cfg.OutPath)
	return cfg, nil
}
