package access

import (
	"context"
	"testing"

	"emperror.dev/errors"
)

type fakeResolver struct {
	admins map[string]string
	staff  map[string]string
}

func (f *fakeResolver) ResolveAdmin(ctx context.Context, id string) (*Staff, error) {
	if name, ok := f.admins[id]; ok {
		return &Staff{DiscordID: id, Name: name}, nil
	}
	return nil, nil
}

func (f *fakeResolver) ResolveStaff(ctx context.Context, id string) (*Staff, error) {
	if name, ok := f.staff[id]; ok {
		return &Staff{DiscordID: id, Name: name}, nil
	}
	return nil, nil
}

func newTestGate() *Gate {
	return NewGate(&fakeResolver{
		admins: map[string]string{"admin_1": "Alice"},
		staff:  map[string]string{"staff_1": "Bob"},
	})
}

func TestAuthorizeMissingCredential(t *testing.T) {
	gate := newTestGate()

	_, err := gate.Authorize(context.Background(), "", RoleStaff)
	if !errors.Is(err, ErrMissingCredential) {
		t.Errorf("expected ErrMissingCredential, got %v", err)
	}
}

func TestAuthorizeForbidden(t *testing.T) {
	gate := newTestGate()

	_, err := gate.Authorize(context.Background(), "rando", RoleStaffOrAdmin)
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}

func TestAuthorizeRolesAreIndependent(t *testing.T) {
	gate := newTestGate()

	// admin is not implicitly staff
	_, err := gate.Authorize(context.Background(), "admin_1", RoleStaff)
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("admin passed a staff-only check: %v", err)
	}

	// and staff is not implicitly admin
	_, err = gate.Authorize(context.Background(), "staff_1", RoleAdmin)
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("staff passed an admin-only check: %v", err)
	}
}

func TestAuthorizeUnion(t *testing.T) {
	gate := newTestGate()

	for _, id := range []string{"admin_1", "staff_1"} {
		actor, err := gate.Authorize(context.Background(), id, RoleStaffOrAdmin)
		if err != nil {
			t.Errorf("%s should pass the union check: %v", id, err)
			continue
		}
		if actor.DiscordID != id {
			t.Errorf("resolved actor id %q, expected %q", actor.DiscordID, id)
		}
	}
}

func TestAuthorizeReturnsResolvedActor(t *testing.T) {
	gate := newTestGate()

	actor, err := gate.Authorize(context.Background(), "staff_1", RoleStaff)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if actor.Name != "Bob" {
		t.Errorf("actor name is %q, expected Bob", actor.Name)
	}
}
