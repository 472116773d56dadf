package store

import (
	"fmt"
	"time"
)

// MaxVisits is how many recent records are kept per entity type.
const MaxVisits = 5

// Visit is one entry of the recently-visited list.
type Visit struct {
	EntityType string
	ID         int64
	Label      string
	VisitedAt  time.Time
}

// RecordVisit puts item at the front of the entity type's history. A repeat
// visit moves the existing entry instead of adding a second one, and the
// list is trimmed to MaxVisits.
func (db *DB) RecordVisit(entityType string, item Visit) error {
	if entityType == "" {
		return fmt.Errorf("entity type is required")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var next int64
	if err := tx.QueryRow(`SELECT COALESCE(MAX(seq), 0) + 1 FROM visits WHERE entity_type = ?`, entityType).Scan(&next); err != nil {
		return fmt.Errorf("failed to read visit sequence: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO visits (entity_type, entity_id, label, seq, visited_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (entity_type, entity_id) DO UPDATE SET
			label = excluded.label,
			seq = excluded.seq,
			visited_at = excluded.visited_at`,
		entityType, item.ID, item.Label, next, time.Now())
	if err != nil {
		return fmt.Errorf("failed to record visit: %w", err)
	}

	_, err = tx.Exec(`
		DELETE FROM visits
		WHERE entity_type = ?
		  AND entity_id NOT IN (
		    SELECT entity_id FROM visits WHERE entity_type = ?
		    ORDER BY seq DESC LIMIT ?
		  )`, entityType, entityType, MaxVisits)
	if err != nil {
		return fmt.Errorf("failed to trim history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit visit: %w", err)
	}
	return nil
}

// RecentVisits returns the entity type's history, most recent first.
func (db *DB) RecentVisits(entityType string) ([]Visit, error) {
	rows, err := db.Query(`
		SELECT entity_type, entity_id, label, visited_at
		FROM visits WHERE entity_type = ?
		ORDER BY seq DESC`, entityType)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var visits []Visit
	for rows.Next() {
		var v Visit
		if err := rows.Scan(&v.EntityType, &v.ID, &v.Label, &v.VisitedAt); err != nil {
			return nil, fmt.Errorf("failed to scan visit: %w", err)
		}
		visits = append(visits, v)
	}
	return visits, rows.Err()
}

// RecentIDs returns just the ids of RecentVisits, most recent first.
func (db *DB) RecentIDs(entityType string) ([]int64, error) {
	visits, err := db.RecentVisits(entityType)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(visits))
	for i, v := range visits {
		ids[i] = v.ID
	}
	return ids, nil
}

// ClearHistory removes the history of one entity type, or of all types
// when entityType is empty.
func (db *DB) ClearHistory(entityType string) error {
	var err error
	if entityType == "" {
		_, err = db.Exec(`DELETE FROM visits`)
	} else {
		_, err = db.Exec(`DELETE FROM visits WHERE entity_type = ?`, entityType)
	}
	if err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// SortByRecency returns items with the recently visited ones first, in
// recency order, followed by the rest in their original order. recent is
// most recent first; ids not present in items are ignored.
func SortByRecency[T any](items []T, recent []int64, idOf func(T) int64) []T {
	rank := make(map[int64]int, len(recent))
	for i, id := range recent {
		if _, seen := rank[id]; !seen {
			rank[id] = i
		}
	}

	front := make([]T, len(recent))
	filled := make([]bool, len(recent))
	rest := make([]T, 0, len(items))
	for _, item := range items {
		if r, ok := rank[idOf(item)]; ok && !filled[r] {
			front[r] = item
			filled[r] = true
			continue
		}
		rest = append(rest, item)
	}

	out := make([]T, 0, len(items))
	for i, item := range front {
		if filled[i] {
			out = append(out, item)
		}
	}
	return append(out, rest...)
}
