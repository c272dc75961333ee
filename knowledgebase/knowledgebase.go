/*
Copyright 2025 CareSignal, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package knowledgebase loads the static reference collection that grounds
// evaluation judgments. The collection is read once at process startup and
// is immutable for the process lifetime.
package knowledgebase

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"
)

// Entry is a single knowledge-base record. Entries are opaque to the
// evaluator; they are serialized verbatim into the judge's system prompt.
type Entry = json.RawMessage

// Collection is an immutable set of knowledge-base entries.
type Collection struct {
	entries []Entry
}

// Load reads a JSON array of knowledge-base entries from path.
// Missing files keep their fs.ErrNotExist cause so callers can distinguish
// a missing knowledge base from a corrupt one.
func Load(path string) (*Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading knowledge base %s: %w", path, err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing knowledge base %s: %w", path, err)
	}

	return &Collection{entries: entries}, nil
}

// Len returns the number of entries in the collection.
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Entries returns a copy of the entries, preserving load order.
func (c *Collection) Entries() []Entry {
	if c == nil {
		return nil
	}
	return slices.Clone(c.entries)
}

// MarshalJSON renders the collection as the original JSON array, so prompt
// injection sees the same shape the file carried.
func (c *Collection) MarshalJSON() ([]byte, error) {
	if c == nil || c.entries == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.entries)
}

// LoadDataset reads newline-delimited JSON from path, one object per line.
// Blank lines are skipped; a malformed line is reported with its line number.
func LoadDataset(path string) ([]json.RawMessage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset %s: %w", path, err)
	}
	defer f.Close()

	var rows []json.RawMessage
	scanner := bufio.NewScanner(f)
	// Dataset rows can carry full conversation transcripts
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var row json.RawMessage
		if err := json.Unmarshal([]byte(text), &row); err != nil {
			return nil, fmt.Errorf("parsing dataset %s line %d: %w", path, line, err)
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading dataset %s: %w", path, err)
	}

	return rows, nil
}
