package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/theimaginaryfoundation/chat-dashboard/chatstats"
	"github.com/theimaginaryfoundation/chat-dashboard/chatstats/fileutils"
)

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	corpus, err := mergeFiles(ctx, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	fmt.Fprintf(os.Stdout, "archives_merged=%d messages_written=%d out=%s\n", len(cfg.InPaths), corpus.Len(), cfg.OutPath)
}

// mergeFiles parses every input, merges them in order and writes the merged export.
func mergeFiles(ctx context.Context, cfg Config) (chatstats.Corpus, error) {
	if !cfg.Overwrite && fileutils.FileExists(cfg.OutPath) {
		return chatstats.Corpus{}, fmt.Errorf("output already exists: %s (pass -overwrite)", cfg.OutPath)
	}

	readers := make([]io.Reader, 0, len(cfg.InPaths))
	for _, p := range cfg.InPaths {
		f, err := os.Open(p)
		if err != nil {
			return chatstats.Corpus{}, fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		readers = append(readers, f)
	}

	archives, err := chatstats.ParseArchives(ctx, readers, cfg.Concurrency)
	if err != nil {
		return chatstats.Corpus{}, err
	}
	corpus := chatstats.Merge(archives...)

	if err := fileutils.WriteJSONFile(cfg.OutPath, chatstats.ToExport(corpus), cfg.Pretty, cfg.Overwrite); err != nil {
		return chatstats.Corpus{}, fmt.Errorf("write merged export: %w", err)
	}
	return corpus, nil
}
