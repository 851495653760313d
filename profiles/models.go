package profiles

import (
	"time"

	"emperror.dev/errors"
	"github.com/volatiletech/null/v8"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrProfileExists   = errors.New("profile already exists")

	// ErrProfileBanned blocks deleting a profile while its ban is active.
	ErrProfileBanned = errors.New("banned profiles cannot be deleted")
)

// Profile joins a VRChat account to a Discord account and carries the
// moderation state. Lookups accept either external id.
type Profile struct {
	ID int64 `db:"id"`

	DiscordID  string `db:"discord_id"`
	VRChatID   string `db:"vrchat_id"`
	VRChatName string `db:"vrchat_name"`

	AddedAt   time.Time `db:"added_at"`
	UpdatedAt time.Time `db:"updated_at"`
	CreatedBy string    `db:"created_by"`
	UpdatedBy string    `db:"updated_by"`

	IsBanned     bool        `db:"is_banned"`
	BannedReason null.String `db:"banned_reason"`
	BannedBy     null.String `db:"banned_by"`
	BannedAt     null.Time   `db:"banned_at"`

	IsVerified     bool        `db:"is_verified"`
	VerificationID null.Int64  `db:"verification_id"`
	VerifiedFrom   null.Int64  `db:"verified_from"`
	VerifiedBy     null.String `db:"verified_by"`
	VerifiedAt     null.Time   `db:"verified_at"`
}
