// Package profiles owns the shared user identity registry: the join record
// between a VRChat account and a Discord account, with its ban and
// verification state.
package profiles

import (
	"context"
	"time"

	"github.com/vicentefelipechile/enlacevrc/common"
)

// Create validates and inserts a new profile. Both external ids are
// required and must be unused; the existence check runs through Resolve so
// either id colliding is reported as a conflict.
func Create(ctx context.Context, store Store, discordID, vrchatID, vrchatName, actor string) (*Profile, error) {
	if discordID == "" {
		return nil, common.MissingField("discord_id")
	}
	if vrchatID == "" {
		return nil, common.MissingField("vrchat_id")
	}
	if vrchatName == "" {
		return nil, common.MissingField("vrchat_name")
	}

	for _, id := range []string{vrchatID, discordID} {
		_, err := store.Resolve(ctx, id)
		if err == nil {
			return nil, ErrProfileExists
		}
		if err != ErrProfileNotFound {
			return nil, common.ErrWithCaller(err)
		}
	}

	now := time.Now()
	profile := &Profile{
		DiscordID:  discordID,
		VRChatID:   vrchatID,
		VRChatName: vrchatName,
		AddedAt:    now,
		UpdatedAt:  now,
		CreatedBy:  actor,
		UpdatedBy:  actor,
	}

	err := store.Insert(ctx, profile)
	if err != nil {
		return nil, common.ErrWithCaller(err)
	}

	return profile, nil
}

// Remove deletes a profile by either external id. A banned profile cannot
// be removed; the ban has to be lifted first.
func Remove(ctx context.Context, store Store, externalID string) error {
	profile, err := store.Resolve(ctx, externalID)
	if err != nil {
		return err
	}

	if profile.IsBanned {
		return ErrProfileBanned
	}

	return store.Delete(ctx, profile.ID)
}
