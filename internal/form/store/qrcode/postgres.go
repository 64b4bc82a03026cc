package qrcode

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"gatepass/internal/form/models"
	id "gatepass/pkg/domain"
	"gatepass/pkg/platform/sentinel"
)

const uniqueViolation = "23505"

// Postgres persists QR bindings. qr_identifier carries a unique index; the
// intake path looks rows up by identifier only.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, qr *models.QRCode) error {
	query := `
		INSERT INTO qrcodes (id, form_id, premise_id, qr_identifier, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(qr.ID), uuid.UUID(qr.FormID), uuid.UUID(qr.PremiseID),
		qr.Identifier, qr.IsActive, qr.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("create qrcode: %w", err)
	}
	return nil
}

func (s *Postgres) FindByIdentifier(ctx context.Context, identifier string) (*models.QRCode, error) {
	return s.findOne(ctx, `WHERE qr_identifier = $1`, identifier)
}

func (s *Postgres) FindActiveByForm(ctx context.Context, formID id.FormID) (*models.QRCode, error) {
	return s.findOne(ctx, `WHERE form_id = $1 AND is_active`, uuid.UUID(formID))
}

func (s *Postgres) findOne(ctx context.Context, where string, arg any) (*models.QRCode, error) {
	query := `
		SELECT id, form_id, premise_id, qr_identifier, is_active, created_at
		FROM qrcodes ` + where
	var (
		qr                      models.QRCode
		qrID, formID, premiseID uuid.UUID
	)
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&qrID, &formID, &premiseID, &qr.Identifier, &qr.IsActive, &qr.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find qrcode: %w", err)
	}
	qr.ID = id.QRCodeID(qrID)
	qr.FormID = id.FormID(formID)
	qr.PremiseID = id.PremiseID(premiseID)
	return &qr, nil
}

func (s *Postgres) DeactivateByForm(ctx context.Context, formID id.FormID, _ time.Time) error {
	query := `UPDATE qrcodes SET is_active = FALSE WHERE form_id = $1 AND is_active`
	if _, err := s.db.ExecContext(ctx, query, uuid.UUID(formID)); err != nil {
		return fmt.Errorf("deactivate qrcodes: %w", err)
	}
	return nil
}

func (s *Postgres) CountByForm(ctx context.Context, formID id.FormID) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM qrcodes WHERE form_id = $1`, uuid.UUID(formID)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count qrcodes: %w", err)
	}
	return n, nil
}
