package form

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"gatepass/internal/form/models"
	id "gatepass/pkg/domain"
	"gatepass/pkg/platform/sentinel"
)

// Postgres persists forms. Field definitions are stored as a JSONB array to
// preserve order.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, f *models.Form) error {
	fields, err := json.Marshal(f.Fields)
	if err != nil {
		return fmt.Errorf("marshal form fields: %w", err)
	}
	query := `
		INSERT INTO forms (id, premise_id, name, fields, is_active, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if _, err := s.db.ExecContext(ctx, query,
		uuid.UUID(f.ID), uuid.UUID(f.PremiseID), f.Name, fields,
		f.IsActive, f.Version, f.CreatedAt, f.UpdatedAt); err != nil {
		return fmt.Errorf("create form: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, formID id.FormID) (*models.Form, error) {
	query := `
		SELECT id, premise_id, name, fields, is_active, version, created_at, updated_at
		FROM forms WHERE id = $1
	`
	f, err := scanForm(s.db.QueryRowContext(ctx, query, uuid.UUID(formID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find form: %w", err)
	}
	return f, nil
}

func (s *Postgres) ListByPremise(ctx context.Context, premiseID id.PremiseID) ([]*models.Form, error) {
	query := `
		SELECT id, premise_id, name, fields, is_active, version, created_at, updated_at
		FROM forms WHERE premise_id = $1
		ORDER BY created_at
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(premiseID))
	if err != nil {
		return nil, fmt.Errorf("list forms: %w", err)
	}
	defer rows.Close()

	var out []*models.Form
	for rows.Next() {
		f, err := scanForm(rows)
		if err != nil {
			return nil, fmt.Errorf("scan form: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *Postgres) Update(ctx context.Context, f *models.Form) error {
	fields, err := json.Marshal(f.Fields)
	if err != nil {
		return fmt.Errorf("marshal form fields: %w", err)
	}
	query := `
		UPDATE forms
		SET name = $2, fields = $3, is_active = $4, version = $5, updated_at = $6
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		uuid.UUID(f.ID), f.Name, fields, f.IsActive, f.Version, f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update form: %w", err)
	}
	return requireAffected(res)
}

func (s *Postgres) Delete(ctx context.Context, formID id.FormID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM forms WHERE id = $1`, uuid.UUID(formID))
	if err != nil {
		return fmt.Errorf("delete form: %w", err)
	}
	return requireAffected(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanForm(row rowScanner) (*models.Form, error) {
	var (
		f                 models.Form
		formID, premiseID uuid.UUID
		fieldsJSON        []byte
	)
	if err := row.Scan(&formID, &premiseID, &f.Name, &fieldsJSON,
		&f.IsActive, &f.Version, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(fieldsJSON, &f.Fields); err != nil {
		return nil, fmt.Errorf("unmarshal form fields: %w", err)
	}
	f.ID = id.FormID(formID)
	f.PremiseID = id.PremiseID(premiseID)
	return &f, nil
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
