package filter

import (
	"sort"
	"strings"

	"github.com/vburojevic/azsam/internal/domain"
)

// SortTargets orders subscriptions by tenant domain, then name, then id,
// all case-insensitively. Runs walk targets in this order so reports stay
// diffable between executions.
func SortTargets(subs []domain.Subscription) {
	sort.SliceStable(subs, func(i, j int) bool {
		di, dj := strings.ToLower(subs[i].TenantDomain), strings.ToLower(subs[j].TenantDomain)
		if di != dj {
			return di < dj
		}
		ni, nj := strings.ToLower(subs[i].Name), strings.ToLower(subs[j].Name)
		if ni != nj {
			return ni < nj
		}
		return strings.ToLower(subs[i].ID) < strings.ToLower(subs[j].ID)
	})
}
