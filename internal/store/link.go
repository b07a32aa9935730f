package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rcliao/lessonforge/internal/model"
)

func (s *SQLiteStore) GetMapping(ctx context.Context, itemID string) (*model.Mapping, error) {
	m, err := getMapping(ctx, s.db, itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrMappingNotFound, itemID)
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ListMappings returns a plan's mappings in item sequence order.
func (s *SQLiteStore) ListMappings(ctx context.Context, planID string) ([]model.Mapping, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT m.item_id, m.lesson_id, m.outcome, m.created_at FROM lesson_mappings m
		 JOIN plan_items i ON i.id = m.item_id
		 WHERE i.plan_id = ? ORDER BY i.seq ASC`, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Mapping
	for rows.Next() {
		m, err := scanMapping(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// PublishItem links an item to its lesson and marks it published in the same
// transaction. A second call for the same item returns the first mapping.
func (s *SQLiteStore) PublishItem(ctx context.Context, itemID, lessonID string, outcome model.Outcome) (*model.Mapping, bool, error) {
	var (
		mapping  *model.Mapping
		existing bool
	)
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var one int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM plan_items WHERE id = ?`, itemID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
		}
		if err != nil {
			return err
		}

		now := s.timestamp()
		res, err := tx.ExecContext(ctx,
			`INSERT INTO lesson_mappings (item_id, lesson_id, outcome, created_at) VALUES (?, ?, ?, ?)
			 ON CONFLICT(item_id) DO NOTHING`,
			itemID, lessonID, string(outcome), now)
		if err != nil {
			return fmt.Errorf("insert mapping: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			m, err := getMapping(ctx, tx, itemID)
			if err != nil {
				return fmt.Errorf("read existing mapping: %w", err)
			}
			mapping, existing = m, true
			return nil
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE plan_items SET status = ?, published_at = ?, lease_owner = NULL, lease_expires_at = NULL
			 WHERE id = ?`, string(model.StatusPublished), now, itemID)
		if err != nil {
			return fmt.Errorf("publish item: %w", err)
		}
		mapping = &model.Mapping{ItemID: itemID, LessonID: lessonID, Outcome: outcome, CreatedAt: parseTime(now)}
		existing = false
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return mapping, existing, nil
}

// ClaimItem takes a lease on an item for owner. It succeeds when the item is
// unleased, already held by owner, or its lease has expired.
func (s *SQLiteStore) ClaimItem(ctx context.Context, itemID, owner string, ttl time.Duration) (bool, error) {
	now := s.now().UTC()
	res, err := s.exec(ctx,
		`UPDATE plan_items SET lease_owner = ?, lease_expires_at = ?
		 WHERE id = ? AND (lease_owner IS NULL OR lease_owner = ? OR lease_expires_at <= ?)`,
		owner, now.Add(ttl).Format(timeLayout), itemID, owner, now.Format(timeLayout))
	if err != nil {
		return false, fmt.Errorf("claim item: %w", err)
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}

func (s *SQLiteStore) ReleaseItem(ctx context.Context, itemID, owner string) error {
	_, err := s.exec(ctx,
		`UPDATE plan_items SET lease_owner = NULL, lease_expires_at = NULL WHERE id = ? AND lease_owner = ?`,
		itemID, owner)
	return err
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getMapping(ctx context.Context, q queryRower, itemID string) (*model.Mapping, error) {
	row := q.QueryRowContext(ctx,
		`SELECT item_id, lesson_id, outcome, created_at FROM lesson_mappings WHERE item_id = ?`, itemID)
	m, err := scanMapping(row)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func scanMapping(row scanner) (model.Mapping, error) {
	var m model.Mapping
	var outcome, createdAt string
	if err := row.Scan(&m.ItemID, &m.LessonID, &outcome, &createdAt); err != nil {
		return m, err
	}
	m.Outcome = model.Outcome(outcome)
	m.CreatedAt = parseTime(createdAt)
	return m, nil
}
