package series

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"
)

var logger = log.New(log.Writer(), "[series] ", log.LstdFlags)

// Entry is one recorded pair of price estimates.
type Entry struct {
	Timestamp             string  `json:"timestamp"`
	FlightCountEstimate   float64 `json:"market5Estimate"`
	FlowImbalanceEstimate float64 `json:"market6Estimate"`
}

// Store appends estimate entries to a JSON array file.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Append records both estimates with the current time. The file is
// created when absent; undecodable existing content is logged and the
// series restarted.
func (s *Store) Append(flightCount, flowImbalance float64) error {
	entries := s.load()

	entries = append(entries, Entry{
		Timestamp:             time.Now().Format(time.RFC3339),
		FlightCountEstimate:   flightCount,
		FlowImbalanceEstimate: flowImbalance,
	})

	data, err := json.MarshalIndent(entries, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode estimate series: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write estimate series to %s: %w", s.path, err)
	}

	return nil
}

func (s *Store) load() []Entry {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		logger.Printf("could not decode %s, starting a new series: %s", s.path, err)
		return nil
	}

	return entries
}
