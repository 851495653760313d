package profiles

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"emperror.dev/errors"
	"github.com/jmoiron/sqlx"
	"github.com/vicentefelipechile/enlacevrc/common"
	"github.com/vicentefelipechile/enlacevrc/common/testutils"
)

func TestMain(m *testing.M) {
	db, err := testutils.InitPQ([]string{"profiles"}, DBSchemas)
	if err != nil {
		fmt.Println("Failed connecting to postgres, not running tests: ", err)
		return
	}

	common.PQ = db
	common.SQLX = sqlx.NewDb(db, "postgres")

	os.Exit(m.Run())
}

func insertTestProfile(t *testing.T, store *SQLStore, discordID, vrchatID string) *Profile {
	t.Helper()

	now := time.Now()
	p := &Profile{
		DiscordID:  discordID,
		VRChatID:   vrchatID,
		VRChatName: "Somebody",
		AddedAt:    now,
		UpdatedAt:  now,
		CreatedBy:  "staff_1",
		UpdatedBy:  "staff_1",
	}

	if err := store.Insert(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID == 0 {
		t.Fatal("insert did not return the new id")
	}

	return p
}

func TestSQLResolveOrder(t *testing.T) {
	defer testutils.ClearTables(common.PQ, "profiles")

	store := NewSQLStore()
	ctx := context.Background()

	insertTestProfile(t, store, "d_1", "usr_1")

	byVRChat, err := store.Resolve(ctx, "usr_1")
	if err != nil {
		t.Fatalf("resolve by vrchat id failed: %v", err)
	}
	byDiscord, err := store.Resolve(ctx, "d_1")
	if err != nil {
		t.Fatalf("resolve by discord id failed: %v", err)
	}
	if byVRChat.ID != byDiscord.ID {
		t.Errorf("the two lookups found different rows: %d vs %d", byVRChat.ID, byDiscord.ID)
	}

	_, err = store.Resolve(ctx, "ghost")
	if !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestSQLBanFieldGroup(t *testing.T) {
	defer testutils.ClearTables(common.PQ, "profiles")

	store := NewSQLStore()
	ctx := context.Background()

	p := insertTestProfile(t, store, "d_1", "usr_1")

	bannedAt := time.Now()
	if err := store.SetBanFields(ctx, p.ID, "spam", "staff_1", bannedAt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	banned, err := store.Resolve(ctx, "usr_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !banned.IsBanned || !banned.BannedReason.Valid || !banned.BannedBy.Valid || !banned.BannedAt.Valid {
		t.Errorf("ban fields not all set: %+v", banned)
	}
	if banned.UpdatedBy != "staff_1" {
		t.Errorf("updated_by not maintained, got %q", banned.UpdatedBy)
	}

	if err = store.ClearBanFields(ctx, p.ID, "staff_2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cleared, err := store.Resolve(ctx, "usr_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cleared.IsBanned || cleared.BannedReason.Valid || cleared.BannedBy.Valid || cleared.BannedAt.Valid {
		t.Errorf("ban fields not all cleared: %+v", cleared)
	}
}

func TestSQLVerificationFieldGroup(t *testing.T) {
	defer testutils.ClearTables(common.PQ, "profiles")

	store := NewSQLStore()
	ctx := context.Background()

	p := insertTestProfile(t, store, "d_1", "usr_1")

	if err := store.SetVerificationFields(ctx, p.ID, 1, 42, "staff_1", time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	verified, err := store.Resolve(ctx, "usr_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !verified.IsVerified || !verified.VerificationID.Valid || !verified.VerifiedFrom.Valid ||
		!verified.VerifiedBy.Valid || !verified.VerifiedAt.Valid {
		t.Errorf("verification fields not all set: %+v", verified)
	}
	if verified.VerifiedFrom.Int64 != 42 {
		t.Errorf("verified_from is %d, expected 42", verified.VerifiedFrom.Int64)
	}

	if err = store.ClearVerificationFields(ctx, p.ID, "staff_1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cleared, err := store.Resolve(ctx, "usr_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cleared.IsVerified || cleared.VerificationID.Valid || cleared.VerifiedFrom.Valid ||
		cleared.VerifiedBy.Valid || cleared.VerifiedAt.Valid {
		t.Errorf("verification fields not all cleared: %+v", cleared)
	}
}

func TestSQLDeleteMissingRow(t *testing.T) {
	store := NewSQLStore()

	err := store.Delete(context.Background(), 999999)
	if !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestSQLFieldWritesOnMissingRow(t *testing.T) {
	store := NewSQLStore()
	ctx := context.Background()

	if err := store.SetBanFields(ctx, 999999, "spam", "staff_1", time.Now()); !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("SetBanFields: expected ErrProfileNotFound, got %v", err)
	}
	if err := store.ClearVerificationFields(ctx, 999999, "staff_1"); !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("ClearVerificationFields: expected ErrProfileNotFound, got %v", err)
	}
}
