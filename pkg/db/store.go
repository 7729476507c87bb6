package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/japaniel/kanjigraph/pkg/entity"
	"github.com/japaniel/kanjigraph/pkg/store"
)

// DBExecutor is an interface that allows methods to accept either *sql.DB or *sql.Tx
type DBExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// UpsertEntity inserts the record or replaces the stored one, and rewrites its relation rows.
func UpsertEntity(db DBExecutor, e entity.Entity) error {
	if e.ID <= 0 {
		return fmt.Errorf("entity id must be positive, got %d", e.ID)
	}
	if !e.Type.Valid() {
		return fmt.Errorf("entity %d: unknown type %q", e.ID, e.Type)
	}
	record, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode entity %d: %w", e.ID, err)
	}

	_, err = db.Exec(`INSERT INTO entities (id, type, level, primary_meaning, record, updated_at)
			  VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
			  ON CONFLICT(id)
			  DO UPDATE SET
			    type = excluded.type,
			    level = excluded.level,
			    primary_meaning = excluded.primary_meaning,
			    record = excluded.record,
			    updated_at = excluded.updated_at`,
		e.ID, string(e.Type), e.Level, e.PrimaryMeaning, string(record))
	if err != nil {
		return fmt.Errorf("upsert entity %d: %w", e.ID, err)
	}

	if _, err := db.Exec(`DELETE FROM entity_relations WHERE entity_id = ?`, e.ID); err != nil {
		return fmt.Errorf("clear relations of %d: %w", e.ID, err)
	}
	for _, t := range entity.Types {
		for _, rid := range e.Related.For(t) {
			if _, err := db.Exec(`INSERT OR IGNORE INTO entity_relations (entity_id, related_id, related_type) VALUES (?, ?, ?)`,
				e.ID, rid, string(t)); err != nil {
				return fmt.Errorf("link %d to %s %d: %w", e.ID, t, rid, err)
			}
		}
	}
	return nil
}

// GetEntity returns the stored record. A missing row is reported as store.ErrNotFound.
func GetEntity(db DBExecutor, id int64) (entity.Entity, error) {
	var record string
	err := db.QueryRow(`SELECT record FROM entities WHERE id = ?`, id).Scan(&record)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Entity{}, fmt.Errorf("entity %d: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return entity.Entity{}, fmt.Errorf("select entity %d: %w", id, err)
	}
	return entity.Decode([]byte(record))
}

// EachEntity calls fn for every stored record in id order. fn must not query db: the
// result set stays open until it returns.
func EachEntity(db DBExecutor, fn func(entity.Entity) error) error {
	rows, err := db.Query(`SELECT record FROM entities ORDER BY id`)
	if err != nil {
		return fmt.Errorf("list entities: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var record string
		if err := rows.Scan(&record); err != nil {
			return err
		}
		e, err := entity.Decode([]byte(record))
		if err != nil {
			return err
		}
		if err := fn(e); err != nil {
			return err
		}
	}
	return rows.Err()
}

// RelatedIDs returns the ids related to id in one bucket, ascending.
func RelatedIDs(db DBExecutor, id int64, t entity.Type) ([]int64, error) {
	rows, err := db.Query(`SELECT related_id FROM entity_relations WHERE entity_id = ? AND related_type = ? ORDER BY related_id`, id, string(t))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []int64
	for rows.Next() {
		var rid int64
		if err := rows.Scan(&rid); err != nil {
			return nil, err
		}
		out = append(out, rid)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// CheckRelations returns every relation whose reverse edge is missing: A lists B in its
// bucket for B's type, but B does not list A in its bucket for A's type. Relations pointing at
// records that were never stored are reported too.
func CheckRelations(db DBExecutor) ([]Relation, error) {
	rows, err := db.Query(`SELECT r.entity_id, e.type, r.related_id, r.related_type
		FROM entity_relations r JOIN entities e ON e.id = r.entity_id
		ORDER BY r.entity_id, r.related_type, r.related_id`)
	if err != nil {
		return nil, fmt.Errorf("list relations: %w", err)
	}
	var all []Relation
	for rows.Next() {
		var r Relation
		if err := rows.Scan(&r.EntityID, &r.EntityType, &r.RelatedID, &r.RelatedType); err != nil {
			rows.Close()
			return nil, err
		}
		all = append(all, r)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, err
	}

	type bucket struct {
		id int64
		t  string
	}
	reverse := make(map[bucket]map[int64]bool)
	var missing []Relation
	for _, r := range all {
		k := bucket{r.RelatedID, r.EntityType}
		back, ok := reverse[k]
		if !ok {
			ids, err := RelatedIDs(db, r.RelatedID, entity.Type(r.EntityType))
			if err != nil {
				return nil, fmt.Errorf("relations of %d: %w", r.RelatedID, err)
			}
			back = make(map[int64]bool, len(ids))
			for _, id := range ids {
				back[id] = true
			}
			reverse[k] = back
		}
		if !back[r.EntityID] {
			missing = append(missing, r)
		}
	}
	return missing, nil
}

// CountEntities returns the number of stored records per type.
func CountEntities(db DBExecutor) (map[entity.Type]int, error) {
	rows, err := db.Query(`SELECT type, COUNT(*) FROM entities GROUP BY type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[entity.Type]int)
	for rows.Next() {
		var t string
		var n int
		if err := rows.Scan(&t, &n); err != nil {
			return nil, err
		}
		out[entity.Type(t)] = n
	}
	return out, rows.Err()
}

// SQLiteStore serves records from the entities table.
type SQLiteStore struct {
	DB *sql.DB
}

// NewSQLiteStore wraps an initialised connection.
func NewSQLiteStore(conn *sql.DB) *SQLiteStore {
	return &SQLiteStore{DB: conn}
}

// Get implements store.Store.
func (s *SQLiteStore) Get(ctx context.Context, id int64) (entity.Entity, error) {
	var record string
	err := s.DB.QueryRowContext(ctx, `SELECT record FROM entities WHERE id = ?`, id).Scan(&record)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Entity{}, fmt.Errorf("entity %d: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return entity.Entity{}, fmt.Errorf("select entity %d: %w", id, err)
	}
	return entity.Decode([]byte(record))
}
