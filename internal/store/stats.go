package store

import (
	"context"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath           string      `json:"db_path"`
	DBSizeBytes      int64       `json:"db_size_bytes"`
	Plans            int         `json:"plans"`
	Items            int         `json:"items"`
	PublishedItems   int         `json:"published_items"`
	Lessons          int         `json:"lessons"`
	LessonsWithAudio int         `json:"lessons_with_audio"`
	DeletedLessons   int         `json:"deleted_lessons"`
	Mappings         int         `json:"mappings"`
	Reused           int         `json:"reused"`
	Created          int         `json:"created"`
	ReuseRatio       float64     `json:"reuse_ratio"`
	PlanStats        []PlanStats `json:"plan_stats"`
}

// PlanStats holds per-plan progress.
type PlanStats struct {
	PlanID    string `json:"plan_id"`
	Title     string `json:"title"`
	Items     int    `json:"items"`
	Completed int    `json:"completed"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{DBPath: s.path}

	if info, err := os.Stat(s.path); err == nil {
		st.DBSizeBytes = info.Size()
	}

	counts := []struct {
		dst   *int
		query string
	}{
		{&st.Plans, `SELECT COUNT(*) FROM plans`},
		{&st.Items, `SELECT COUNT(*) FROM plan_items`},
		{&st.PublishedItems, `SELECT COUNT(*) FROM plan_items WHERE status = 'published'`},
		{&st.Lessons, `SELECT COUNT(*) FROM lessons WHERE deleted_at IS NULL`},
		{&st.LessonsWithAudio, `SELECT COUNT(*) FROM lessons WHERE deleted_at IS NULL AND audio IS NOT NULL`},
		{&st.DeletedLessons, `SELECT COUNT(*) FROM lessons WHERE deleted_at IS NOT NULL`},
		{&st.Mappings, `SELECT COUNT(*) FROM lesson_mappings`},
		{&st.Reused, `SELECT COUNT(*) FROM lesson_mappings WHERE outcome = 'reused'`},
		{&st.Created, `SELECT COUNT(*) FROM lesson_mappings WHERE outcome = 'created'`},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dst); err != nil {
			return st, err
		}
	}
	if st.Mappings > 0 {
		st.ReuseRatio = float64(st.Reused) / float64(st.Mappings)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.title, COUNT(i.id), COUNT(m.item_id)
		FROM plans p
		LEFT JOIN plan_items i ON i.plan_id = p.id
		LEFT JOIN lesson_mappings m ON m.item_id = i.id
		GROUP BY p.id ORDER BY p.created_at DESC`)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	for rows.Next() {
		var ps PlanStats
		if err := rows.Scan(&ps.PlanID, &ps.Title, &ps.Items, &ps.Completed); err != nil {
			return st, err
		}
		st.PlanStats = append(st.PlanStats, ps)
	}
	return st, rows.Err()
}
