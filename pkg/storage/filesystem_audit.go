package storage

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/felixgeelhaar/intakerouter/pkg/domain"
)

// maxEventLine bounds a single audit line; metadata is small key/value data.
const maxEventLine = 1 << 20

// RecordEvent appends one JSON line to events.jsonl and syncs it to disk.
// Appends are serialized so the hash chain sees events in write order.
func (r *FilesystemRepository) RecordEvent(event domain.Event) error {
	path, err := r.ResolvePath(EventsFile)
	if err != nil {
		return err
	}
	line, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", event.ID, err)
	}

	r.eventsMu.Lock()
	defer r.eventsMu.Unlock()

	// #nosec G304 -- Path is resolved and validated via ResolvePath
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open audit trail: %w", err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to append event %s: %w", event.ID, err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to sync audit trail: %w", err)
	}
	return f.Close()
}

// LoadEvents reads the audit trail in write order. A line that does not
// decode is skipped; VerifyIntegrity then reports the broken link.
func (r *FilesystemRepository) LoadEvents() ([]domain.Event, error) {
	data, err := r.readFile(EventsFile)
	if os.IsNotExist(err) {
		return []domain.Event{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read audit trail: %w", err)
	}

	events := []domain.Event{}
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), maxEventLine)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var e domain.Event
		if json.Unmarshal(line, &e) != nil {
			continue
		}
		events = append(events, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan audit trail: %w", err)
	}
	return events, nil
}
