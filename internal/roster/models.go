// Package roster owns the family-member records: who is in the household,
// their age group and role, their per-member allow/block overrides, and
// their screen-time configuration. The decision core only reads members;
// mutations go through this package.
package roster

import (
	"strings"
	"time"

	"github.com/hearthgate/hearthgate/internal/policy"
)

// ScreenTimeConfig is the member's daily budget. Enforce=false means the
// member is never limited, regardless of the limits stored here.
type ScreenTimeConfig struct {
	WeekdayLimit time.Duration `json:"weekday_limit"`
	WeekendLimit time.Duration `json:"weekend_limit"`
	Enforce      bool          `json:"enforce"`
}

// Member is one family member. AllowedApps/BlockedApps and the website
// lists are the per-member overrides that take precedence over the age
// table inside the decision engine.
type Member struct {
	ID       string
	Username string
	AgeGroup policy.AgeGroup
	Role     policy.Role

	AllowedApps     []string
	BlockedApps     []string
	AllowedWebsites []string
	BlockedWebsites []string

	ScreenTime ScreenTimeConfig

	LastLogin time.Time
	Online    bool

	// Credential verifier material; never the password itself.
	Salt     []byte
	Verifier []byte
}

// AppAllowed reports an exact, case-insensitive match in the member's
// explicit allow list.
func (m *Member) AppAllowed(app string) bool {
	return containsFold(m.AllowedApps, app)
}

// AppBlocked reports an exact, case-insensitive match in the member's
// explicit block list.
func (m *Member) AppBlocked(app string) bool {
	return containsFold(m.BlockedApps, app)
}

// WebsiteAllowed reports whether the URL contains one of the member's
// allowed website fragments.
func (m *Member) WebsiteAllowed(url string) bool {
	return containsFragment(m.AllowedWebsites, url)
}

// WebsiteBlocked reports whether the URL contains one of the member's
// blocked website fragments.
func (m *Member) WebsiteBlocked(url string) bool {
	return containsFragment(m.BlockedWebsites, url)
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

func containsFragment(fragments []string, s string) bool {
	s = strings.ToLower(s)
	for _, f := range fragments {
		if f != "" && strings.Contains(s, strings.ToLower(f)) {
			return true
		}
	}
	return false
}
