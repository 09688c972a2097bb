package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pwlgk/s13-backend/internal/domain/schedule"
)

// DictionaryRepository is the PostgreSQL implementation of
// schedule.DictionaryRepository.
type DictionaryRepository struct {
	conn *Connection
}

// NewDictionaryRepository creates a new dictionary repository.
func NewDictionaryRepository(conn *Connection) *DictionaryRepository {
	return &DictionaryRepository{conn: conn}
}

// ══════════════════════════════════════════════════════════════════════════════
// UPSERTS
// ══════════════════════════════════════════════════════════════════════════════

const (
	upsertGroupQuery = `
		INSERT INTO groups (id, name, real_group_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			real_group_id = EXCLUDED.real_group_id`

	upsertTutorQuery = `
		INSERT INTO tutors (id, name)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name`

	upsertRoomQuery = `
		INSERT INTO rooms (id, name, building)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			building = EXCLUDED.building`
)

// UpsertAll upserts the three dictionary collections in a single transaction.
// Empty collections are skipped so a partially failed fetch still refreshes
// whatever the feed did deliver.
func (r *DictionaryRepository) UpsertAll(ctx context.Context, groups []schedule.Group, tutors []schedule.Tutor, rooms []schedule.Room) (schedule.DictionaryCounts, error) {
	counts := schedule.DictionaryCounts{}

	err := r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		batch := &pgx.Batch{}

		for _, g := range groups {
			realID := intOrNull(g.RealGroupID)
			batch.Queue(upsertGroupQuery, g.ID, g.Name, realID)
		}
		for _, t := range tutors {
			batch.Queue(upsertTutorQuery, t.ID, t.Name)
		}
		for _, room := range rooms {
			batch.Queue(upsertRoomQuery, room.ID, room.Name, textOrNull(room.Building))
		}

		if batch.Len() == 0 {
			return nil
		}

		results := tx.SendBatch(ctx, batch)
		defer results.Close()

		for i := 0; i < batch.Len(); i++ {
			if _, err := results.Exec(); err != nil {
				return fmt.Errorf("dictionary upsert %d/%d: %w", i+1, batch.Len(), err)
			}
		}
		return nil
	})
	if err != nil {
		return counts, err
	}

	counts.Groups = len(groups)
	counts.Tutors = len(tutors)
	counts.Rooms = len(rooms)
	return counts, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// LOOKUPS
// ══════════════════════════════════════════════════════════════════════════════

// TutorIDs returns the set of known tutor ids.
func (r *DictionaryRepository) TutorIDs(ctx context.Context) (map[int]struct{}, error) {
	return r.idSet(ctx, "SELECT id FROM tutors")
}

// RoomIDs returns the set of known room ids.
func (r *DictionaryRepository) RoomIDs(ctx context.Context) (map[int]struct{}, error) {
	return r.idSet(ctx, "SELECT id FROM rooms")
}

func (r *DictionaryRepository) idSet(ctx context.Context, query string) (map[int]struct{}, error) {
	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[int]struct{})
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

// AllGroupIDs returns every group id in the dictionary, ordered for a stable
// sync sequence.
func (r *DictionaryRepository) AllGroupIDs(ctx context.Context) ([]int, error) {
	rows, err := r.conn.Query(ctx, "SELECT id FROM groups ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query group ids: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan group id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

func intOrNull(v int) interface{} {
	if v == 0 {
		return nil
	}
	return v
}

func textOrNull(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
