package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Vuyani-Magibisela/GSCMS-sub009/internal/domain/model"
)

// SaveRubric inserts or replaces a rubric template and its criteria in one
// transaction.
func (s *SQLStore) SaveRubric(ctx context.Context, r model.Rubric) error {
	defer s.observe("save_rubric", time.Now())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return s.fail("save_rubric", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO rubric_templates (id, name, category) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name, category = excluded.category
	`, r.ID, r.Name, r.Category); err != nil {
		return s.fail("save_rubric", fmt.Errorf("upserting rubric %s: %w", r.ID, err))
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM rubric_criteria WHERE rubric_id = ?`, r.ID); err != nil {
		return s.fail("save_rubric", fmt.Errorf("clearing criteria of %s: %w", r.ID, err))
	}
	for i, c := range r.Criteria {
		pos := c.Position
		if pos == 0 {
			pos = i + 1
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO rubric_criteria (rubric_id, id, name, max_points, position)
			VALUES (?, ?, ?, ?, ?)
		`, r.ID, c.ID, c.Name, c.MaxPoints, pos); err != nil {
			return s.fail("save_rubric", fmt.Errorf("inserting criterion %s: %w", c.ID, err))
		}
	}
	return s.fail("save_rubric", tx.Commit())
}

// Rubric returns a rubric template with its criteria in position order.
func (s *SQLStore) Rubric(ctx context.Context, id string) (model.Rubric, error) {
	defer s.observe("rubric", time.Now())

	var r model.Rubric
	err := s.db.QueryRowContext(ctx, `SELECT id, name, category FROM rubric_templates WHERE id = ?`, id).
		Scan(&r.ID, &r.Name, &r.Category)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Rubric{}, fmt.Errorf("rubric %s: %w", id, model.ErrRubricNotFound)
	}
	if err != nil {
		return model.Rubric{}, s.fail("rubric", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, max_points, position FROM rubric_criteria
		WHERE rubric_id = ? ORDER BY position, id
	`, id)
	if err != nil {
		return model.Rubric{}, s.fail("rubric", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c model.Criterion
		if err := rows.Scan(&c.ID, &c.Name, &c.MaxPoints, &c.Position); err != nil {
			return model.Rubric{}, s.fail("rubric", err)
		}
		r.Criteria = append(r.Criteria, c)
	}
	return r, s.fail("rubric", rows.Err())
}
