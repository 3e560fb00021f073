package filter

import (
	"fmt"
	"strings"

	"github.com/vburojevic/azsam/internal/domain"
)

// Options holds the subscription selection lists from flags or config
type Options struct {
	Include []string
	Exclude []string
	Tenants []string
}

// Empty returns true when no selection is configured
func (o Options) Empty() bool {
	return len(o.Include) == 0 && len(o.Exclude) == 0 && len(o.Tenants) == 0
}

// ExhaustedError reports that a filter stage removed every subscription.
// Runs abort on it so a typo in a filter list cannot silently do nothing.
type ExhaustedError struct {
	Stage string // "include", "exclude" or "tenant"
	Terms []string
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("no subscriptions left after %s filter (%s)", e.Stage, strings.Join(e.Terms, ", "))
}

// Apply runs the selection pipeline: tenant narrowing first, then include,
// then exclude. Each stage that empties the set aborts with ExhaustedError.
func Apply(subs []domain.Subscription, opts Options) ([]domain.Subscription, error) {
	out := subs

	if len(opts.Tenants) > 0 {
		out = keep(out, NewTenantFilter(opts.Tenants))
		if len(out) == 0 {
			return nil, &ExhaustedError{Stage: "tenant", Terms: opts.Tenants}
		}
	}

	if len(opts.Include) > 0 {
		out = keep(out, NewTermFilter(opts.Include))
		if len(out) == 0 {
			return nil, &ExhaustedError{Stage: "include", Terms: opts.Include}
		}
	}

	if len(opts.Exclude) > 0 {
		out = drop(out, NewTermFilter(opts.Exclude))
		if len(out) == 0 {
			return nil, &ExhaustedError{Stage: "exclude", Terms: opts.Exclude}
		}
	}

	return out, nil
}

func keep(subs []domain.Subscription, f Filter) []domain.Subscription {
	var out []domain.Subscription
	for i := range subs {
		if f.Match(&subs[i]) {
			out = append(out, subs[i])
		}
	}
	return out
}

func drop(subs []domain.Subscription, f Filter) []domain.Subscription {
	var out []domain.Subscription
	for i := range subs {
		if !f.Match(&subs[i]) {
			out = append(out, subs[i])
		}
	}
	return out
}
