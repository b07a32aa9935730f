package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rcliao/lessonforge/internal/model"
)

const itemColumns = `i.id, i.plan_id, i.seq, i.refs, i.translation, i.status, i.published_at, i.created_at`

// CreatePlan inserts a plan and all of its items in one transaction.
// References are stored as given; callers normalize them first.
func (s *SQLiteStore) CreatePlan(ctx context.Context, p CreatePlanParams) (*model.Plan, []model.PlanItem, error) {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		return nil, nil, errors.New("create plan: title required")
	}
	translation := strings.TrimSpace(p.Translation)
	if translation == "" {
		return nil, nil, errors.New("create plan: translation required")
	}
	now := s.timestamp()
	plan := &model.Plan{
		ID:          newID(),
		Title:       title,
		Translation: translation,
		FollowUpURL: strings.TrimSpace(p.FollowUpURL),
		ThemeHint:   strings.TrimSpace(p.ThemeHint),
		CreatedAt:   parseTime(now),
	}

	items := make([]model.PlanItem, 0, len(p.Items))
	for i, ip := range p.Items {
		if len(ip.References) == 0 {
			return nil, nil, fmt.Errorf("create plan: item %d has no references", i+1)
		}
		seq := ip.Seq
		if seq == 0 {
			seq = i + 1
		}
		tr := strings.TrimSpace(ip.Translation)
		if tr == "" {
			tr = translation
		}
		items = append(items, model.PlanItem{
			ID:          newID(),
			PlanID:      plan.ID,
			Seq:         seq,
			References:  ip.References,
			Translation: tr,
			Status:      model.StatusPending,
			CreatedAt:   plan.CreatedAt,
		})
	}

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO plans (id, title, translation, follow_up_url, theme_hint, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			plan.ID, plan.Title, plan.Translation, nullableString(plan.FollowUpURL), nullableString(plan.ThemeHint), now)
		if err != nil {
			return fmt.Errorf("insert plan: %w", err)
		}
		for _, it := range items {
			refs, _ := json.Marshal(it.References)
			_, err := tx.ExecContext(ctx,
				`INSERT INTO plan_items (id, plan_id, seq, refs, translation, status, created_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				it.ID, it.PlanID, it.Seq, string(refs), it.Translation, string(model.StatusPending), now)
			if err != nil {
				if isUniqueViolation(err, "seq") {
					return fmt.Errorf("%w: seq %d", ErrDuplicateItemSeq, it.Seq)
				}
				return fmt.Errorf("insert item %d: %w", it.Seq, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return plan, items, nil
}

func (s *SQLiteStore) GetPlan(ctx context.Context, planID string) (*model.Plan, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, translation, follow_up_url, theme_hint, created_at FROM plans WHERE id = ?`, planID)
	p, err := scanPlan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrPlanNotFound, planID)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *SQLiteStore) ListPlans(ctx context.Context) ([]model.Plan, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, translation, follow_up_url, theme_hint, created_at FROM plans ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []model.Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

func (s *SQLiteStore) GetItem(ctx context.Context, itemID string) (*model.PlanItem, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM plan_items i WHERE i.id = ?`, itemID)
	it, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// ListItems returns every item of a plan in sequence order.
func (s *SQLiteStore) ListItems(ctx context.Context, planID string) ([]model.PlanItem, error) {
	return s.queryItems(ctx,
		`SELECT `+itemColumns+` FROM plan_items i WHERE i.plan_id = ? ORDER BY i.seq ASC`, planID)
}

// ListUnmappedItems returns items without a mapping in ascending sequence.
// A limit of zero or less returns all of them.
func (s *SQLiteStore) ListUnmappedItems(ctx context.Context, planID string, limit int) ([]model.PlanItem, error) {
	if limit <= 0 {
		limit = -1
	}
	return s.queryItems(ctx,
		`SELECT `+itemColumns+` FROM plan_items i
		 LEFT JOIN lesson_mappings m ON m.item_id = i.id
		 WHERE i.plan_id = ? AND m.item_id IS NULL
		 ORDER BY i.seq ASC
		 LIMIT ?`, planID, limit)
}

// PlanCounts derives progress from persisted mappings.
func (s *SQLiteStore) PlanCounts(ctx context.Context, planID string) (Counts, error) {
	var c Counts
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(m.item_id) FROM plan_items i
		 LEFT JOIN lesson_mappings m ON m.item_id = i.id
		 WHERE i.plan_id = ?`, planID).Scan(&c.Total, &c.Completed)
	if err != nil {
		return Counts{}, err
	}
	if c.Total == 0 {
		if _, err := s.GetPlan(ctx, planID); err != nil {
			return Counts{}, err
		}
	}
	return c, nil
}

func (s *SQLiteStore) queryItems(ctx context.Context, query string, args ...any) ([]model.PlanItem, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.PlanItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func scanPlan(row scanner) (model.Plan, error) {
	var p model.Plan
	var followUp, theme sql.NullString
	var createdAt string
	if err := row.Scan(&p.ID, &p.Title, &p.Translation, &followUp, &theme, &createdAt); err != nil {
		return p, err
	}
	p.FollowUpURL = followUp.String
	p.ThemeHint = theme.String
	p.CreatedAt = parseTime(createdAt)
	return p, nil
}

func scanItem(row scanner) (model.PlanItem, error) {
	var it model.PlanItem
	var refs, status, createdAt string
	var publishedAt sql.NullString
	if err := row.Scan(&it.ID, &it.PlanID, &it.Seq, &refs, &it.Translation, &status, &publishedAt, &createdAt); err != nil {
		return it, err
	}
	if err := json.Unmarshal([]byte(refs), &it.References); err != nil {
		return it, fmt.Errorf("decode refs of item %s: %w", it.ID, err)
	}
	it.Status = model.ItemStatus(status)
	it.PublishedAt = parseNullTime(publishedAt)
	it.CreatedAt = parseTime(createdAt)
	return it, nil
}
