package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gatepass/internal/visit/models"
	id "gatepass/pkg/domain"
	"gatepass/pkg/formdata"
	"gatepass/pkg/platform/sentinel"
)

const visitColumns = `
	id, premise_id, form_id, qrcode_id, visitor_id, form_version, form_data,
	status, denial_reason, device_summary, client_ip, decided_by,
	check_in_time, check_out_time, updated_at`

// Postgres persists visits. Status transitions go through Execute, which
// holds a row lock (SELECT ... FOR UPDATE) across the validate and the write
// so concurrent transitions on the same visit serialize.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, v *models.Visit) error {
	data, err := json.Marshal(v.FormData)
	if err != nil {
		return fmt.Errorf("marshal form data: %w", err)
	}
	query := `
		INSERT INTO visits (` + visitColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err = s.db.ExecContext(ctx, query,
		uuid.UUID(v.ID), uuid.UUID(v.PremiseID), uuid.UUID(v.FormID),
		uuid.UUID(v.QRCodeID), nullableVisitorID(v.VisitorID), v.FormVersion,
		data, string(v.Status), v.DenialReason, v.DeviceSummary, v.ClientIP,
		nullableUserID(v.DecidedBy), v.CheckInTime, v.CheckOutTime, v.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create visit: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, visitID id.VisitID) (*models.Visit, error) {
	query := `SELECT` + visitColumns + ` FROM visits WHERE id = $1`
	v, err := scanVisit(s.db.QueryRowContext(ctx, query, uuid.UUID(visitID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find visit: %w", err)
	}
	return v, nil
}

// ListByPremise returns the premise's visits, optionally filtered by status,
// newest check-in first.
func (s *Postgres) ListByPremise(ctx context.Context, premiseID id.PremiseID, status *models.VisitStatus) ([]*models.Visit, error) {
	query := `SELECT` + visitColumns + ` FROM visits WHERE premise_id = $1`
	args := []any{uuid.UUID(premiseID)}
	if status != nil {
		query += ` AND status = $2`
		args = append(args, string(*status))
	}
	query += ` ORDER BY check_in_time DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list visits: %w", err)
	}
	defer rows.Close()

	var out []*models.Visit
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, fmt.Errorf("list visits: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list visits: %w", err)
	}
	return out, nil
}

// Execute atomically validates and mutates the visit inside one transaction.
// The row is locked with FOR UPDATE before validate runs, so a concurrent
// transition sees the committed status and fails its precondition rather
// than overwriting.
func (s *Postgres) Execute(ctx context.Context, visitID id.VisitID, validate func(*models.Visit) error, mutate func(*models.Visit)) (*models.Visit, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin visit transaction: %w", err)
	}
	defer tx.Rollback()

	query := `SELECT` + visitColumns + ` FROM visits WHERE id = $1 FOR UPDATE`
	v, err := scanVisit(tx.QueryRowContext(ctx, query, uuid.UUID(visitID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("lock visit: %w", err)
	}

	if err := validate(v); err != nil {
		return nil, err
	}
	mutate(v)

	update := `
		UPDATE visits
		SET visitor_id = $2, status = $3, denial_reason = $4, decided_by = $5,
		    check_out_time = $6, updated_at = $7
		WHERE id = $1
	`
	_, err = tx.ExecContext(ctx, update,
		uuid.UUID(v.ID), nullableVisitorID(v.VisitorID), string(v.Status),
		v.DenialReason, nullableUserID(v.DecidedBy), v.CheckOutTime, v.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("update visit: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit visit transaction: %w", err)
	}
	return v, nil
}

// LinkVisitor attaches the resolved visitor identity as a secondary update.
func (s *Postgres) LinkVisitor(ctx context.Context, visitID id.VisitID, visitorID id.VisitorID, at time.Time) error {
	query := `UPDATE visits SET visitor_id = $2, updated_at = $3 WHERE id = $1`
	res, err := s.db.ExecContext(ctx, query, uuid.UUID(visitID), uuid.UUID(visitorID), at)
	if err != nil {
		return fmt.Errorf("link visitor: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("link visitor: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVisit(row rowScanner) (*models.Visit, error) {
	var (
		v                                    models.Visit
		visitID, premiseID, formID, qrcodeID uuid.UUID
		visitorID, decidedBy                 uuid.NullUUID
		data                                 []byte
		status                               string
		checkOut                             sql.NullTime
	)
	err := row.Scan(&visitID, &premiseID, &formID, &qrcodeID, &visitorID,
		&v.FormVersion, &data, &status, &v.DenialReason, &v.DeviceSummary,
		&v.ClientIP, &decidedBy, &v.CheckInTime, &checkOut, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	v.ID = id.VisitID(visitID)
	v.PremiseID = id.PremiseID(premiseID)
	v.FormID = id.FormID(formID)
	v.QRCodeID = id.QRCodeID(qrcodeID)
	v.Status = models.VisitStatus(status)
	if visitorID.Valid {
		vid := id.VisitorID(visitorID.UUID)
		v.VisitorID = &vid
	}
	if decidedBy.Valid {
		uid := id.UserID(decidedBy.UUID)
		v.DecidedBy = &uid
	}
	if checkOut.Valid {
		t := checkOut.Time
		v.CheckOutTime = &t
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &v.FormData); err != nil {
			return nil, fmt.Errorf("unmarshal form data: %w", err)
		}
	} else {
		v.FormData = formdata.FormData{}
	}
	return &v, nil
}

func nullableVisitorID(visitorID *id.VisitorID) uuid.NullUUID {
	if visitorID == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: uuid.UUID(*visitorID), Valid: true}
}

func nullableUserID(userID *id.UserID) uuid.NullUUID {
	if userID == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: uuid.UUID(*userID), Valid: true}
}
