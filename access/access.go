// Package access implements the authorization gate in front of every
// administrative operation. Admin and staff are two independent role sets;
// neither implies the other, so operations wanting "staff or above" have to
// ask for the union explicitly.
package access

import (
	"context"

	"emperror.dev/errors"
)

// Role is the requirement a caller has to satisfy.
type Role int

const (
	RoleStaff Role = iota
	RoleAdmin
	RoleStaffOrAdmin
)

var (
	// ErrMissingCredential means the caller presented no identity at all.
	// Maps to a 401 class response, as opposed to ErrForbidden's 403.
	ErrMissingCredential = errors.New("missing credential")

	// ErrForbidden means the caller resolved to a known identity that lacks
	// the required role.
	ErrForbidden = errors.New("forbidden")
)

// Staff is the resolved internal identity of an authorized caller. The
// DiscordID here is the canonical id from the role table row, never the raw
// caller supplied value, and is what gets stored in banned_by/verified_by.
type Staff struct {
	DiscordID string
	Name      string
}

// RoleResolver looks a caller's external id up in the two role sets.
// Implementations return (nil, nil) for an id that is not a member.
type RoleResolver interface {
	ResolveAdmin(ctx context.Context, externalID string) (*Staff, error)
	ResolveStaff(ctx context.Context, externalID string) (*Staff, error)
}

// Gate resolves a caller into an actor or rejects the request. It performs
// pure reads; auditing the verdict is the caller's responsibility.
type Gate struct {
	Resolver RoleResolver
}

func NewGate(resolver RoleResolver) *Gate {
	return &Gate{Resolver: resolver}
}

// Authorize returns the resolved actor if the caller holds the required
// role, ErrMissingCredential if no identity was presented, and ErrForbidden
// otherwise. A denial is terminal for the request, never retried.
func (g *Gate) Authorize(ctx context.Context, callerID string, required Role) (*Staff, error) {
	if callerID == "" {
		return nil, ErrMissingCredential
	}

	switch required {
	case RoleAdmin:
		return g.resolveOne(ctx, callerID, g.Resolver.ResolveAdmin)
	case RoleStaff:
		return g.resolveOne(ctx, callerID, g.Resolver.ResolveStaff)
	case RoleStaffOrAdmin:
		actor, err := g.resolveOne(ctx, callerID, g.Resolver.ResolveStaff)
		if err == nil || !errors.Is(err, ErrForbidden) {
			return actor, err
		}

		return g.resolveOne(ctx, callerID, g.Resolver.ResolveAdmin)
	}

	return nil, errors.Errorf("unknown required role %d", required)
}

func (g *Gate) resolveOne(ctx context.Context, callerID string, resolve func(context.Context, string) (*Staff, error)) (*Staff, error) {
	actor, err := resolve(ctx, callerID)
	if err != nil {
		return nil, err
	}

	if actor == nil {
		return nil, ErrForbidden
	}

	return actor, nil
}
