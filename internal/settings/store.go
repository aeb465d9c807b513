package settings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"
)

var (
	// ErrNotFound is returned when a key has no value.
	ErrNotFound = errors.New("settings: key not found")
	// ErrTypeMismatch is returned when a key holds a value of another type.
	ErrTypeMismatch = errors.New("settings: type mismatch")
)

// CurrentSchemaVersion is the version of the settings file format.
const CurrentSchemaVersion = 1

// Reader reads typed values.
type Reader interface {
	GetBool(key string) (bool, error)
	GetInt(key string) (int, error)
	GetString(key string) (string, error)
}

// Writer writes typed values.
type Writer interface {
	SetBool(key string, v bool) error
	SetInt(key string, v int) error
	SetString(key string, v string) error
}

// Notifier delivers value changes for a key.
type Notifier interface {
	// Watch calls fn after every change of key until cancel is called. fn runs
	// on the goroutine that observed the change.
	Watch(key string, fn func(key string)) (cancel func(), err error)
}

// Backend is the full settings surface used by option providers.
type Backend interface {
	Reader
	Writer
	Notifier
}

// Entry is a single stored value.
type Entry struct {
	Key       string    `json:"key"`
	Value     any       `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

type storedEntry struct {
	Value     any   `json:"value"`
	UpdatedAt int64 `json:"updated_at,omitempty"`
}

type fileFormat struct {
	SchemaVersion int                    `json:"schema_version"`
	Entries       map[string]storedEntry `json:"entries"`
}

// Store is a typed key/value store, optionally backed by a JSON file.
type Store struct {
	logger *slog.Logger
	path   string

	mu      sync.RWMutex
	entries map[string]storedEntry

	watchMu sync.Mutex
	watches map[string]map[int]func(string)
	nextID  int
}

// DataDir returns the path to the devopts data directory.
// Uses XDG_DATA_HOME or defaults to ~/.local/share/devopts.
func DataDir() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "devopts"), nil
}

// DefaultPath returns the path to the shared settings file.
func DefaultPath() (string, error) {
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "settings.json"), nil
}

// NewMemory creates a store seeded with values that is never persisted.
func NewMemory(values map[string]any, logger *slog.Logger) *Store {
	s := newStore("", logger)
	now := time.Now().Unix()
	for k, v := range values {
		nv, err := normalize(v)
		if err != nil {
			s.logger.Warn("skipping setting with unsupported type", "key", k, "type", fmt.Sprintf("%T", v))
			continue
		}
		s.entries[k] = storedEntry{Value: nv, UpdatedAt: now}
	}
	return s
}

// Open loads the store at path. A missing file yields a store seeded with
// Defaults, which is written on the first change.
func Open(path string, logger *slog.Logger) (*Store, error) {
	s := newStore(path, logger)

	entries, err := readFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load settings: %w", err)
		}
		now := time.Now().Unix()
		for k, v := range Defaults() {
			nv, _ := normalize(v)
			entries[k] = storedEntry{Value: nv, UpdatedAt: now}
		}
	}
	s.entries = entries
	return s, nil
}

func newStore(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		logger:  logger,
		path:    path,
		entries: make(map[string]storedEntry),
		watches: make(map[string]map[int]func(string)),
	}
}

// Path returns the backing file path, empty for memory-only stores.
func (s *Store) Path() string {
	return s.path
}

// Get returns the raw value of key.
func (s *Store) Get(key string) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return e.Value, nil
}

// GetBool returns the boolean value of key.
func (s *Store) GetBool(key string) (bool, error) {
	v, err := s.Get(key)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %s is %T, not bool", ErrTypeMismatch, key, v)
	}
	return b, nil
}

// GetInt returns the integer value of key.
func (s *Store) GetInt(key string) (int, error) {
	v, err := s.Get(key)
	if err != nil {
		return 0, err
	}
	i, ok := v.(int)
	if !ok {
		return 0, fmt.Errorf("%w: %s is %T, not int", ErrTypeMismatch, key, v)
	}
	return i, nil
}

// GetString returns the string value of key.
func (s *Store) GetString(key string) (string, error) {
	v, err := s.Get(key)
	if err != nil {
		return "", err
	}
	str, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s is %T, not string", ErrTypeMismatch, key, v)
	}
	return str, nil
}

// SetBool stores a boolean value.
func (s *Store) SetBool(key string, v bool) error { return s.Set(key, v) }

// SetInt stores an integer value.
func (s *Store) SetInt(key string, v int) error { return s.Set(key, v) }

// SetString stores a string value.
func (s *Store) SetString(key string, v string) error { return s.Set(key, v) }

// Set stores a bool, int or string value and notifies watchers if the value
// changed.
func (s *Store) Set(key string, value any) error {
	nv, err := normalize(value)
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	s.mu.Lock()
	old, existed := s.entries[key]
	changed := !existed || old.Value != nv
	if changed {
		s.entries[key] = storedEntry{Value: nv, UpdatedAt: time.Now().Unix()}
		if err := s.saveLocked(); err != nil {
			if existed {
				s.entries[key] = old
			} else {
				delete(s.entries, key)
			}
			s.mu.Unlock()
			return fmt.Errorf("failed to save settings: %w", err)
		}
	}
	s.mu.Unlock()

	if changed {
		s.notify(key)
	}
	return nil
}

// Delete removes key, making it read as unsupported.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	old, existed := s.entries[key]
	if !existed {
		s.mu.Unlock()
		return nil
	}
	delete(s.entries, key)
	if err := s.saveLocked(); err != nil {
		s.entries[key] = old
		s.mu.Unlock()
		return fmt.Errorf("failed to save settings: %w", err)
	}
	s.mu.Unlock()

	s.notify(key)
	return nil
}

// Entries returns all stored values sorted by key.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, len(s.entries))
	for k, e := range s.entries {
		out = append(out, Entry{Key: k, Value: e.Value, UpdatedAt: time.Unix(e.UpdatedAt, 0)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Watch implements Notifier.
func (s *Store) Watch(key string, fn func(key string)) (func(), error) {
	if fn == nil {
		return nil, errors.New("settings: nil watch callback")
	}

	s.watchMu.Lock()
	defer s.watchMu.Unlock()

	id := s.nextID
	s.nextID++
	if s.watches[key] == nil {
		s.watches[key] = make(map[int]func(string))
	}
	s.watches[key][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			s.watchMu.Lock()
			defer s.watchMu.Unlock()
			delete(s.watches[key], id)
			if len(s.watches[key]) == 0 {
				delete(s.watches, key)
			}
		})
	}, nil
}

// WatchCount returns the number of active watches on key.
func (s *Store) WatchCount(key string) int {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	return len(s.watches[key])
}

func (s *Store) notify(key string) {
	s.watchMu.Lock()
	fns := make([]func(string), 0, len(s.watches[key]))
	for _, fn := range s.watches[key] {
		fns = append(fns, fn)
	}
	s.watchMu.Unlock()

	for _, fn := range fns {
		fn(key)
	}
}

// Reload re-reads the backing file and notifies watchers of every key whose
// value changed.
func (s *Store) Reload() error {
	if s.path == "" {
		return nil
	}

	entries, err := readFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to reload settings: %w", err)
	}

	s.mu.Lock()
	var changed []string
	for k, e := range entries {
		if old, ok := s.entries[k]; !ok || old.Value != e.Value {
			changed = append(changed, k)
		}
	}
	for k := range s.entries {
		if _, ok := entries[k]; !ok {
			changed = append(changed, k)
		}
	}
	s.entries = entries
	s.mu.Unlock()

	sort.Strings(changed)
	for _, k := range changed {
		s.logger.Debug("setting changed on disk", "key", k)
		s.notify(k)
	}
	return nil
}

func (s *Store) saveLocked() error {
	if s.path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(fileFormat{
		SchemaVersion: CurrentSchemaVersion,
		Entries:       s.entries,
	}, "", "  ")
	if err != nil {
		return err
	}

	// Write atomically via temp file
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmpPath, s.path)
}

func readFile(path string) (map[string]storedEntry, error) {
	entries := make(map[string]storedEntry)

	data, err := os.ReadFile(path)
	if err != nil {
		return entries, err
	}

	var f fileFormat
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&f); err != nil {
		return entries, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	for k, e := range f.Entries {
		nv, err := normalize(e.Value)
		if err != nil {
			return entries, fmt.Errorf("invalid value for %s: %w", k, err)
		}
		e.Value = nv
		entries[k] = e
	}
	return entries, nil
}

// normalize converts v to one of bool, int or string.
func normalize(v any) (any, error) {
	switch t := v.(type) {
	case bool, int, string:
		return t, nil
	case int32:
		return int(t), nil
	case int64:
		return int(t), nil
	case json.Number:
		i, err := t.Int64()
		if err != nil {
			return nil, fmt.Errorf("%w: %s is not an integer", ErrTypeMismatch, t)
		}
		return int(i), nil
	default:
		return nil, fmt.Errorf("%w: unsupported type %T", ErrTypeMismatch, v)
	}
}

// ParseValue interprets a command-line value: "true" and "false" are
// booleans, decimal numbers are integers, anything else is a string.
func ParseValue(s string) any {
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	return s
}
