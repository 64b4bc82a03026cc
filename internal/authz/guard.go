// Package authz implements the premise-scoped authorization guard.
//
// Forms, QR codes, and visits all resolve to exactly one owning premise, so
// one rule covers every owner-initiated operation: allow iff the acting
// principal is that premise's owner. Callers resolve the target resource
// first; an absent resource is NotFound before ownership is ever evaluated,
// keeping 404 and 403 distinct.
package authz

import (
	"context"

	id "gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
)

// OwnerResolver resolves a premise to its owner principal. Implemented by the
// premise service; the single capability keeps guard logic out of every
// entity type.
type OwnerResolver interface {
	FindOwner(ctx context.Context, premiseID id.PremiseID) (id.UserID, error)
}

// PremiseScoped is satisfied by any resource that belongs to a premise.
type PremiseScoped interface {
	OwningPremise() id.PremiseID
}

// Guard evaluates ownership for premise-scoped resources.
type Guard struct {
	owners OwnerResolver
}

func NewGuard(owners OwnerResolver) *Guard {
	return &Guard{owners: owners}
}

// RequireOwner allows the operation iff principal owns the premise.
// Returns Unauthorized for a nil principal, Forbidden for a mismatch, and
// propagates the resolver's ConfigurationFault when the premise row is
// missing while still referenced.
func (g *Guard) RequireOwner(ctx context.Context, principal id.UserID, premiseID id.PremiseID) error {
	if principal.IsNil() {
		return dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	owner, err := g.owners.FindOwner(ctx, premiseID)
	if err != nil {
		return err
	}
	if owner != principal {
		return dErrors.New(dErrors.CodeForbidden, "principal does not own this premise")
	}
	return nil
}

// RequireResourceOwner is the convenience form for resolved resources.
func (g *Guard) RequireResourceOwner(ctx context.Context, principal id.UserID, resource PremiseScoped) error {
	return g.RequireOwner(ctx, principal, resource.OwningPremise())
}
