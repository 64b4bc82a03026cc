package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"gatepass/internal/premise/models"
	id "gatepass/pkg/domain"
	"gatepass/pkg/platform/sentinel"
)

// uniqueViolation is the postgres error code for unique index violations.
const uniqueViolation = "23505"

// Postgres persists premises. Uniqueness of owner_id and friendly_code is
// backed by unique indexes; violations surface as sentinel.ErrAlreadyUsed.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) CreateIfOwnerAvailable(ctx context.Context, p *models.Premise) error {
	query := `
		INSERT INTO premises (id, owner_id, name, business_type, friendly_code, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(p.ID), uuid.UUID(p.OwnerID), p.Name, p.BusinessType,
		p.FriendlyCode, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("create premise: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, premiseID id.PremiseID) (*models.Premise, error) {
	return s.findOne(ctx, `WHERE id = $1`, uuid.UUID(premiseID))
}

func (s *Postgres) FindByOwner(ctx context.Context, ownerID id.UserID) (*models.Premise, error) {
	return s.findOne(ctx, `WHERE owner_id = $1`, uuid.UUID(ownerID))
}

func (s *Postgres) findOne(ctx context.Context, where string, arg any) (*models.Premise, error) {
	query := `
		SELECT id, owner_id, name, business_type, friendly_code, created_at, updated_at
		FROM premises ` + where
	var (
		p                  models.Premise
		premiseID, ownerID uuid.UUID
	)
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&premiseID, &ownerID, &p.Name, &p.BusinessType, &p.FriendlyCode,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find premise: %w", err)
	}
	p.ID = id.PremiseID(premiseID)
	p.OwnerID = id.UserID(ownerID)
	return &p, nil
}

func (s *Postgres) Update(ctx context.Context, p *models.Premise) error {
	query := `
		UPDATE premises SET name = $2, business_type = $3, updated_at = $4
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		uuid.UUID(p.ID), p.Name, p.BusinessType, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update premise: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update premise: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
