package postgres

import (
	"context"
	"fmt"
)

// UserRepository is the PostgreSQL implementation of schedule.UserRepository.
// The worker only reads the user table; the bot process owns writes.
type UserRepository struct {
	conn *Connection
}

// NewUserRepository creates a new user repository.
func NewUserRepository(conn *Connection) *UserRepository {
	return &UserRepository{conn: conn}
}

// ActiveGroupIDs returns ids of groups that have at least one non-blocked
// user. These groups get the frequent sync cadence.
func (r *UserRepository) ActiveGroupIDs(ctx context.Context) ([]int, error) {
	query := `
		SELECT DISTINCT group_id
		FROM users
		WHERE group_id IS NOT NULL AND is_blocked = FALSE
		ORDER BY group_id`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query active group ids: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan active group id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
