package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"gatepass/internal/visitor/models"
	id "gatepass/pkg/domain"
	"gatepass/pkg/platform/sentinel"
)

// uniqueViolation is the postgres error code for unique index violations.
const uniqueViolation = "23505"

// Postgres persists visitor identities. Partial unique indexes on email and
// phone (where non-empty) back the dedup guarantee; a losing concurrent
// insert surfaces as sentinel.ErrAlreadyUsed so the resolver can fall back
// to a lookup.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, v *models.Visitor) error {
	query := `
		INSERT INTO visitors (id, email, phone, full_name, id_number, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(v.ID), v.Email, v.Phone, v.FullName, v.IDNumber,
		v.CreatedAt, v.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("create visitor: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, visitorID id.VisitorID) (*models.Visitor, error) {
	return s.findOne(ctx, `WHERE id = $1`, uuid.UUID(visitorID))
}

func (s *Postgres) FindByEmail(ctx context.Context, email string) (*models.Visitor, error) {
	return s.findOne(ctx, `WHERE email = $1`, email)
}

func (s *Postgres) FindByPhone(ctx context.Context, phone string) (*models.Visitor, error) {
	return s.findOne(ctx, `WHERE phone = $1`, phone)
}

func (s *Postgres) findOne(ctx context.Context, where string, arg any) (*models.Visitor, error) {
	query := `
		SELECT id, email, phone, full_name, id_number, created_at, updated_at
		FROM visitors ` + where
	var (
		v         models.Visitor
		visitorID uuid.UUID
	)
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&visitorID, &v.Email, &v.Phone, &v.FullName, &v.IDNumber,
		&v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find visitor: %w", err)
	}
	v.ID = id.VisitorID(visitorID)
	return &v, nil
}
