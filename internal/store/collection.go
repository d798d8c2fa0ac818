// collection.go
//
// A scalable, high performance drop-in replacement for the renterz browser inventory service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of renterz-unitsdb.
// renterz-unitsdb is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// renterz-unitsdb is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with renterz-unitsdb.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

// Package store persists JSON collections in the layout the browser client
// kept in localStorage: one JSON array per key. It is the seed source and
// write-through snapshot mirror for demo/fallback mode.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Collection keys, matching the browser store layout.
const (
	KeyProperties = "properties"
	KeyUnits      = "units"
	KeyUnitAudit  = "unit_audit"
	KeyUsers      = "users"
)

// StorageLimitError reports a write rejected by the configured byte budget.
// Callers must surface it to the user rather than swallow it: oversized
// encoded image payloads in assignee profiles are the usual cause.
type StorageLimitError struct {
	Key   string
	Size  int
	Limit int
}

func (e *StorageLimitError) Error() string {
	return "Storage limit reached. Reduce uploaded file size and try again."
}

// Store reads and writes JSON array collections under a data directory.
type Store struct {
	dir   string
	limit int
}

// New creates a Store rooted at dir with the given write budget in bytes.
func New(dir string, limitBytes int) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &Store{dir: dir, limit: limitBytes}, nil
}

// Read returns the stored JSON array for key. A missing file, unreadable
// content or anything that is not a JSON array seeds the collection with
// seed and returns it; corruption never surfaces to the caller.
func (s *Store) Read(key string, seed []byte) ([]byte, error) {
	raw, err := os.ReadFile(s.path(key))
	if err == nil && isJSONArray(raw) {
		return raw, nil
	}

	if len(seed) == 0 || !isJSONArray(seed) {
		seed = []byte("[]")
	}
	if err := s.Write(key, seed); err != nil {
		return nil, err
	}
	return seed, nil
}

// Write persists a JSON array for key, rejecting payloads above the byte
// budget with a StorageLimitError.
func (s *Store) Write(key string, data []byte) error {
	if s.limit > 0 && len(data) > s.limit {
		return &StorageLimitError{Key: key, Size: len(data), Limit: s.limit}
	}
	if err := os.WriteFile(s.path(key), data, 0o644); err != nil {
		return fmt.Errorf("failed to write collection %q: %w", key, err)
	}
	return nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// isJSONArray reports whether raw parses as a JSON array.
func isJSONArray(raw []byte) bool {
	var items []json.RawMessage
	return json.Unmarshal(raw, &items) == nil
}

// ReadCollection reads and decodes a typed collection, seeding with seed
// when the stored data is absent or corrupt.
func ReadCollection[T any](s *Store, key string, seed []T) ([]T, error) {
	seedRaw, err := json.Marshal(seed)
	if err != nil {
		return nil, err
	}

	raw, err := s.Read(key, seedRaw)
	if err != nil {
		return nil, err
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		// Array of the wrong element shape: reseed rather than fail.
		if err := s.Write(key, seedRaw); err != nil {
			return nil, err
		}
		return seed, nil
	}
	return items, nil
}

// WriteCollection encodes and persists a typed collection.
func WriteCollection[T any](s *Store, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return s.Write(key, raw)
}
