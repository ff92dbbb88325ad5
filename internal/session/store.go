package session

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sync"
)

// Store maps each mode to its session record. There is exactly one
// record per known mode for the life of the store; records are created
// at construction, mutated only through Update, and never deleted.
//
// All reads and writes go through a single mutex so a render-driven
// read never observes a partially applied update.
type Store struct {
	mu       sync.RWMutex
	records  map[Mode]Record
	versions map[Mode]uint64
}

// NewStore creates a store seeded with defaults for every known mode.
func NewStore() *Store {
	records := make(map[Mode]Record, int(modeCount))
	versions := make(map[Mode]uint64, int(modeCount))
	for _, m := range AllModes() {
		records[m] = DefaultRecord()
		versions[m] = 0
	}
	return &Store{records: records, versions: versions}
}

// Get returns a copy of the mode's record. It never fails: every known
// mode has a record from construction.
func (s *Store) Get(mode Mode) Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[mode]
	if !ok {
		panic(fmt.Sprintf("session: unknown mode %d", mode))
	}
	return rec
}

// Update applies fn to the mode's current record and stores the result.
// fn must be pure: it receives a copy and returns the next state,
// copying any slice it modifies rather than mutating in place.
//
// If the returned record is value-equal to the previous one, the update
// is dropped and the mode's version does not advance, so downstream
// consumers keyed on the version never recompute for no-op writes.
//
// An unknown mode is a programming error and panics.
func (s *Store) Update(mode Mode, fn func(Record) Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.records[mode]
	if !ok {
		panic(fmt.Sprintf("session: update of unknown mode %d", mode))
	}
	next := fn(prev)
	if reflect.DeepEqual(prev, next) {
		return
	}
	s.records[mode] = next
	s.versions[mode]++
}

// Reset restores the mode's record to defaults.
func (s *Store) Reset(mode Mode) {
	s.Update(mode, func(Record) Record { return DefaultRecord() })
}

// Version returns a counter that advances only when the mode's record
// actually changes. Unrelated modes never advance each other's version.
func (s *Store) Version(mode Mode) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.versions[mode]
}

// Snapshot serializes every record into one opaque blob.
func (s *Store) Snapshot() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]Record, len(s.records))
	for m, rec := range s.records {
		out[m.String()] = rec
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// Restore replaces record state from a blob produced by Snapshot.
// Modes absent from the blob keep their current state; unknown mode
// names in the blob are ignored so snapshots survive mode removals.
func (s *Store) Restore(blob []byte) error {
	var in map[string]Record
	if err := json.Unmarshal(blob, &in); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for name, rec := range in {
		mode, ok := ModeFromName(name)
		if !ok {
			continue
		}
		if reflect.DeepEqual(s.records[mode], rec) {
			continue
		}
		s.records[mode] = rec
		s.versions[mode]++
	}
	return nil
}
