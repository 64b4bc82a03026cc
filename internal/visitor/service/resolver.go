package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"gatepass/internal/visitor/models"
	id "gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
	"gatepass/pkg/formdata"
	"gatepass/pkg/platform/sentinel"
	"gatepass/pkg/requestcontext"
)

// Store abstracts visitor identity persistence. Create returns
// sentinel.ErrAlreadyUsed when a matching key is already taken, letting the
// resolver fall back to the lookup instead of failing the submission.
type Store interface {
	Create(ctx context.Context, v *models.Visitor) error
	FindByID(ctx context.Context, visitorID id.VisitorID) (*models.Visitor, error)
	FindByEmail(ctx context.Context, email string) (*models.Visitor, error)
	FindByPhone(ctx context.Context, phone string) (*models.Visitor, error)
}

// Resolver deduplicates recurring visitors across submissions. Matching is
// ordered and deterministic: email first, then phone, then provisioning.
type Resolver struct {
	visitors Store
	logger   *slog.Logger
}

func NewResolver(visitors Store, logger *slog.Logger) *Resolver {
	return &Resolver{visitors: visitors, logger: logger}
}

// ResolveOrCreate resolves the submission to an existing visitor identity or
// provisions a new one. Returns nil without error when the submission does
// not carry enough identifying fields; the visit stays anonymous.
//
// Two concurrent submissions with the same new email may both miss the
// lookup and race the insert; the unique index decides the winner and the
// loser re-reads the winning row.
func (r *Resolver) ResolveOrCreate(ctx context.Context, data formdata.FormData) (*models.Visitor, error) {
	email := strings.TrimSpace(data.Email())
	phone := strings.TrimSpace(data.Phone())
	fullName := strings.TrimSpace(data.FullName())
	idNumber := strings.TrimSpace(data.IDNumber())

	if email != "" {
		v, err := r.visitors.FindByEmail(ctx, email)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "identity lookup by email failed")
		}
	}
	if phone != "" {
		v, err := r.visitors.FindByPhone(ctx, phone)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "identity lookup by phone failed")
		}
	}

	// phone alone never provisions; a bare phone number is too weak a key
	// to anchor a new identity
	if fullName == "" && email == "" && idNumber == "" {
		return nil, nil
	}

	v, err := models.NewVisitor(id.NewVisitorID(), email, phone, fullName, idNumber, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	err = r.visitors.Create(ctx, v)
	if err == nil {
		r.logger.InfoContext(ctx, "visitor identity provisioned",
			"visitor_id", v.ID,
		)
		return v, nil
	}
	if !errors.Is(err, sentinel.ErrAlreadyUsed) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "identity provisioning failed")
	}

	// lost the provisioning race; the winner's row carries our key
	if email != "" {
		if existing, lookupErr := r.visitors.FindByEmail(ctx, email); lookupErr == nil {
			return existing, nil
		}
	}
	if phone != "" {
		if existing, lookupErr := r.visitors.FindByPhone(ctx, phone); lookupErr == nil {
			return existing, nil
		}
	}
	return nil, dErrors.Wrap(err, dErrors.CodeInternal, "identity provisioning failed")
}
