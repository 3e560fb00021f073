package filter

import (
	"strings"

	"github.com/vburojevic/azsam/internal/domain"
)

// Filter determines if a subscription should be included
type Filter interface {
	// Match returns true if the subscription passes the filter
	Match(sub *domain.Subscription) bool
}

// TermFilter matches a subscription against a list of terms. A term matches
// when it equals the subscription id or name, case-insensitively.
type TermFilter struct {
	terms []string
}

// NewTermFilter creates a term filter
func NewTermFilter(terms []string) *TermFilter {
	return &TermFilter{terms: terms}
}

// Match returns true if any term matches the subscription id or name
func (f *TermFilter) Match(sub *domain.Subscription) bool {
	if len(f.terms) == 0 {
		return true
	}
	for _, t := range f.terms {
		if strings.EqualFold(t, sub.ID) || strings.EqualFold(t, sub.Name) {
			return true
		}
	}
	return false
}

// TenantFilter restricts subscriptions to a set of tenant ids or domains
type TenantFilter struct {
	tenants []string
}

// NewTenantFilter creates a tenant filter
func NewTenantFilter(tenants []string) *TenantFilter {
	return &TenantFilter{tenants: tenants}
}

// Match returns true if the subscription belongs to one of the tenants
func (f *TenantFilter) Match(sub *domain.Subscription) bool {
	if len(f.tenants) == 0 {
		return true
	}
	for _, t := range f.tenants {
		if strings.EqualFold(t, sub.TenantID) || strings.EqualFold(t, sub.TenantDomain) {
			return true
		}
	}
	return false
}
