// Package timers manages named countdown timers persisted to the
// cache directory, with an audible alarm when one expires.
package timers

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"
)

// Timer is a named alarm scheduled for a point in time
type Timer struct {
	Name string
	At   time.Time
}

// Store keeps timers in memory and mirrors every change to a CSV
// file so timers survive restarts
type Store struct {
	path string

	mu     sync.Mutex
	timers []Timer
}

// NewStore loads the store at path, creating an empty file with a
// header row when none exists
func NewStore(path string) (*Store, error) {
	s := &Store{path: path}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	file, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return s.save()
	}
	if err != nil {
		return fmt.Errorf("failed to open timers file: %w", err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return fmt.Errorf("failed to parse timers file: %w", err)
	}

	for i, record := range records {
		if i == 0 {
			continue // header row
		}
		if len(record) < 2 {
			continue
		}
		at, err := time.Parse(time.RFC3339, record[1])
		if err != nil {
			return fmt.Errorf("bad timestamp in timers file: %w", err)
		}
		s.timers = append(s.timers, Timer{Name: record[0], At: at})
	}
	return nil
}

// save rewrites the CSV file from memory. Caller holds the lock or
// is the only accessor.
func (s *Store) save() error {
	file, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("failed to write timers file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"name", "timestamp"}); err != nil {
		return err
	}
	for _, timer := range s.timers {
		if err := writer.Write([]string{timer.Name, timer.At.Format(time.RFC3339)}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// Add schedules a timer
func (s *Store) Add(name string, at time.Time) error {
	if name == "" {
		name = "New Timer"
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.timers = append(s.timers, Timer{Name: name, At: at})
	return s.save()
}

// List returns all pending timers soonest first
func (s *Store) List() []Timer {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Timer, len(s.timers))
	copy(out, s.timers)
	sort.Slice(out, func(i, j int) bool { return out[i].At.Before(out[j].At) })
	return out
}

// Remove deletes all timers with the given name and reports how many
// were removed
func (s *Store) Remove(name string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.timers[:0]
	removed := 0
	for _, timer := range s.timers {
		if timer.Name == name {
			removed++
			continue
		}
		kept = append(kept, timer)
	}
	s.timers = kept
	if removed == 0 {
		return 0, nil
	}
	return removed, s.save()
}

// CheckExpired removes and returns every timer whose time has passed
func (s *Store) CheckExpired(now time.Time) ([]Timer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expired []Timer
	kept := s.timers[:0]
	for _, timer := range s.timers {
		if !timer.At.After(now) {
			expired = append(expired, timer)
			continue
		}
		kept = append(kept, timer)
	}
	s.timers = kept

	if len(expired) == 0 {
		return nil, nil
	}
	return expired, s.save()
}
