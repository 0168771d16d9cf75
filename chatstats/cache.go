package chatstats

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/theimaginaryfoundation/chat-dashboard/chatstats/fileutils"
)

// ReportCache memoizes reports by InputKey.
type ReportCache interface {
	Get(key string) (Report, bool, error)
	Put(key string, r Report) error
}

// MemoryCache keeps reports for the life of the process.
type MemoryCache struct {
	mu      sync.Mutex
	reports map[string]Report
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{reports: make(map[string]Report)}
}

func (c *MemoryCache) Get(key string) (Report, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.reports[key]
	return r, ok, nil
}

func (c *MemoryCache) Put(key string, r Report) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.reports == nil {
		c.reports = make(map[string]Report)
	}
	c.reports[key] = r
	return nil
}

// DirCache stores one <key>.json file per report under Dir.
type DirCache struct {
	Dir string
}

func (c DirCache) path(key string) (string, error) {
	if c.Dir == "" {
		return "", errors.New("DirCache: dir is empty")
	}
	if _, err := hex.DecodeString(key); err != nil || key == "" {
		return "", fmt.Errorf("DirCache: invalid key %q", key)
	}
	return filepath.Join(c.Dir, key+".json"), nil
}

func (c DirCache) Get(key string) (Report, bool, error) {
	p, err := c.path(key)
	if err != nil {
		return Report{}, false, err
	}
	if !fileutils.FileExists(p) {
		return Report{}, false, nil
	}
	var r Report
	if err := fileutils.ReadJSONFile(p, &r); err != nil {
		return Report{}, false, fmt.Errorf("DirCache: %w", err)
	}
	return r, true, nil
}

func (c DirCache) Put(key string, r Report) error {
	p, err := c.path(key)
	if err != nil {
		return err
	}
	if err := fileutils.WriteJSONFileAtomic(p, r, false); err != nil {
		return fmt.Errorf("DirCache: %w", err)
	}
	return nil
}

// CachedReport returns the report stored under key, or builds, stamps and stores it.
// The second result reports a cache hit. A nil cache always builds.
func CachedReport(ctx context.Context, cache ReportCache, key string, build func(context.Context) (Report, error)) (Report, bool, error) {
	if ctx == nil {
		return Report{}, false, errors.New("CachedReport: ctx is nil")
	}
	if build == nil {
		return Report{}, false, errors.New("CachedReport: build is nil")
	}
	if cache != nil {
		r, ok, err := cache.Get(key)
		if err != nil {
			return Report{}, false, fmt.Errorf("CachedReport: get: %w", err)
		}
		if ok {
			return r, true, nil
		}
	}

	r, err := build(ctx)
	if err != nil {
		return Report{}, false, err
	}
	r.InputKey = key
	if cache != nil {
		if err := cache.Put(key, r); err != nil {
			return Report{}, false, fmt.Errorf("CachedReport: put: %w", err)
		}
	}
	return r, false, nil
}
