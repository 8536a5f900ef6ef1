package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spboyer/fidelity/internal/models"
)

// LoadStatus tells which path [Store.Load] took.
type LoadStatus string

const (
	// StatusCreated means no cache existed yet and an empty one was returned.
	StatusCreated LoadStatus = "created"
	// StatusLoaded means an existing cache was decoded.
	StatusLoaded LoadStatus = "loaded"
	// StatusRecovered means an existing cache could not be decoded and an empty
	// one was returned in its place. The unreadable data is not touched until
	// the next save.
	StatusRecovered LoadStatus = "recovered"
)

// Store persists one [EvaluationCache] per reference document.
type Store interface {
	Load(ctx context.Context, sourceFile string) (*EvaluationCache, LoadStatus, error)
	Save(ctx context.Context, c *EvaluationCache) error
}

// FileName is the name a cache for sourceFile is stored under, "cache_{stem}.json".
func FileName(sourceFile string) string {
	base := filepath.Base(sourceFile)
	return "cache_" + strings.TrimSuffix(base, filepath.Ext(base)) + ".json"
}

// FileStore keeps caches as indented JSON files in a directory.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Path returns the cache file path for sourceFile.
func (s *FileStore) Path(sourceFile string) string {
	return filepath.Join(s.dir, FileName(sourceFile))
}

func (s *FileStore) Load(ctx context.Context, sourceFile string) (*EvaluationCache, LoadStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.Path(sourceFile)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return New(sourceFile), StatusCreated, nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("reading cache file: %w", err)
	}

	return decode(ctx, path, sourceFile, data)
}

func (s *FileStore) Save(ctx context.Context, c *EvaluationCache) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := encode(c)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	if err := os.WriteFile(s.Path(c.SourceFile), data, 0644); err != nil {
		return fmt.Errorf("writing cache file: %w", err)
	}

	return nil
}

// Update is the load, record, save transaction for one batch of results
// evaluated against sourceFile.
func Update(ctx context.Context, store Store, sourceFile string, results []models.EvaluationResult) (*EvaluationCache, error) {
	c, status, err := store.Load(ctx, sourceFile)
	if err != nil {
		return nil, err
	}
	slog.DebugContext(ctx, "Loaded evaluation cache", "source", sourceFile, "status", status, "models", len(c.Models))

	for i := range results {
		c.AddEvaluation(&results[i])
	}

	if err := store.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func encode(c *EvaluationCache) ([]byte, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling cache: %w", err)
	}
	return data, nil
}

// decode parses stored cache data. Corrupt data is reported with a warning and
// replaced by an empty cache.
func decode(ctx context.Context, location, sourceFile string, data []byte) (*EvaluationCache, LoadStatus, error) {
	var c EvaluationCache
	if err := json.Unmarshal(data, &c); err != nil {
		slog.WarnContext(ctx, "Failed to load cache, starting a new one", "location", location, "error", err)
		return New(sourceFile), StatusRecovered, nil
	}

	if c.SourceFile == "" {
		c.SourceFile = sourceFile
	}
	c.normalize()
	return &c, StatusLoaded, nil
}
