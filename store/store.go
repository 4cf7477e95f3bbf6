package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/cloudbilling/engine/domain/shared"
	"go.uber.org/zap"
)

const (
	dataFileName    = "data.json"
	sessionFileName = "session.json"
)

// ErrCorrupted indicates the persisted dataset exists but could not be
// decoded. The caller decides whether to recover (e.g. via Reset); the
// store never silently replaces a corrupted blob with seed data.
var ErrCorrupted = shared.NewDomainError("CORRUPTED_DATA", "Persisted dataset is corrupted")

// Store owns the complete dataset and its persistence. The dataset is
// read and written wholesale as a single JSON document; there is a
// single logical writer and no finer-grained locking discipline.
type Store struct {
	mu     sync.RWMutex
	dir    string
	logger *zap.Logger
	data   *Dataset
}

// Open loads the dataset from dir. A missing data file seeds the
// default sample dataset and persists it; a malformed data file
// returns an error wrapping ErrCorrupted.
func Open(dir string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	s := &Store{dir: dir, logger: logger}

	raw, err := os.ReadFile(s.dataPath())
	if errors.Is(err, os.ErrNotExist) {
		logger.Info("No dataset found, seeding defaults", zap.String("path", s.dataPath()))
		s.data = SeedDataset()
		if err := s.writeLocked(s.data); err != nil {
			return nil, err
		}
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading dataset: %w", err)
	}

	var data Dataset
	if err := json.Unmarshal(raw, &data); err != nil {
		logger.Error("Dataset failed to decode", zap.String("path", s.dataPath()), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrCorrupted, err)
	}

	s.data = &data
	logger.Info("Dataset loaded",
		zap.Int("users", len(data.Users)),
		zap.Int("products", len(data.Products)),
		zap.Int("orders", len(data.Orders)),
		zap.Int("invoices", len(data.Invoices)))

	return s, nil
}

// Update applies fn to a clone of the dataset and, on success, persists
// the clone and swaps it in. If fn or the write fails, the live dataset
// is untouched: mutations are all-or-nothing.
func (s *Store) Update(ctx context.Context, fn func(*Dataset) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	draft := s.data.Clone()
	if err := fn(draft); err != nil {
		return err
	}
	if err := s.writeLocked(draft); err != nil {
		return err
	}
	s.data = draft

	return nil
}

// View runs fn with read access to the dataset. fn must not retain or
// mutate what it is given; copy anything that escapes.
func (s *Store) View(fn func(*Dataset)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.data)
}

// Reset discards the current dataset and restores the seed data. This
// is the explicit recovery path after ErrCorrupted.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	seeded := SeedDataset()
	if err := s.writeLocked(seeded); err != nil {
		return err
	}
	s.data = seeded
	s.logger.Warn("Dataset reset to seed data")

	return nil
}

func (s *Store) dataPath() string {
	return filepath.Join(s.dir, dataFileName)
}

func (s *Store) sessionPath() string {
	return filepath.Join(s.dir, sessionFileName)
}

// writeLocked persists the dataset via a temp file and rename so a
// crash mid-write cannot leave a half-written blob behind.
func (s *Store) writeLocked(data *Dataset) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding dataset: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, dataFileName+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing dataset: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing dataset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, s.dataPath()); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing dataset: %w", err)
	}

	return nil
}
