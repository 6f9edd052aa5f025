package daemon

import (
	"time"

	"switchboard/internal/types"
)

// bestAvailableProfile picks the profile to switch to after a rate limit.
// Eligible profiles are not the excluded one, carry a usable credential of
// their own, and have no rate-limit record inside the cooldown window. The
// default profile never qualifies: its ambient credential is the one that
// just hit the limit. Ties go to the most recently used.
func bestAvailableProfile(profiles []*types.Profile, lastLimited map[string]time.Time, cooldown time.Duration, now time.Time, excludingID string) *types.Profile {
	var best *types.Profile
	for _, profile := range profiles {
		if profile == nil || profile.ID == excludingID || profile.IsDefault {
			continue
		}
		if !profile.HasCredential() {
			continue
		}
		if limitedAt, ok := lastLimited[profile.ID]; ok && cooldown > 0 && now.Sub(limitedAt) < cooldown {
			continue
		}
		if best == nil || lastUsedAfter(profile, best) {
			best = profile
		}
	}
	return best
}

func lastUsedAfter(a, b *types.Profile) bool {
	switch {
	case a.LastUsedAt == nil:
		return false
	case b.LastUsedAt == nil:
		return true
	default:
		return a.LastUsedAt.After(*b.LastUsedAt)
	}
}
