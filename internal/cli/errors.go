package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vburojevic/azsam/internal/azure"
	"github.com/vburojevic/azsam/internal/filter"
	"github.com/vburojevic/azsam/internal/output"
	"github.com/vburojevic/azsam/internal/sampler"
)

// CLIError is a structured error used for consistent NDJSON/text emission.
type CLIError struct {
	Code    string
	Message string
	Hint    string
}

func (e *CLIError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// outputErrorCommon normalizes error emission across commands, respecting
// ndjson vs text formats so scripted callers always get machine-readable
// failures.
func outputErrorCommon(globals *Globals, code, message string, hint ...string) error {
	if globals != nil && globals.Format == "ndjson" {
		output.NewNDJSONWriter(globals.Stdout).WriteError(code, message, hint...)
	} else if globals != nil {
		fmt.Fprintf(globals.Stderr, "Error [%s]: %s\n", code, message)
		if len(hint) > 0 && hint[0] != "" {
			fmt.Fprintf(globals.Stderr, "Hint: %s\n", hint[0])
		}
	}
	cliErr := &CLIError{Code: code, Message: message}
	if len(hint) > 0 {
		cliErr.Hint = hint[0]
	}
	return cliErr
}

// runError maps the fatal workflow errors onto stable codes. Everything
// else the runner already reported in-line; it only reaches here when the
// run could not start or finish at all.
func runError(globals *Globals, err error) error {
	var authErr *sampler.AuthError
	var discErr *sampler.DiscoveryError
	var exhErr *filter.ExhaustedError

	switch {
	case errors.As(err, &authErr):
		return outputErrorCommon(globals, "AUTH_FAILED", err.Error(), hintForAuth(err))
	case errors.As(err, &discErr):
		return outputErrorCommon(globals, "DISCOVERY_FAILED", err.Error(), hintForDiscovery(err))
	case errors.As(err, &exhErr):
		return outputErrorCommon(globals, "NO_MATCHES", err.Error(),
			"Run `azsam list` to see the subscriptions the identity can reach")
	}
	return outputErrorCommon(globals, "RUN_FAILED", err.Error())
}

func hintForAuth(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ToLower(azure.ErrorMessage(err))
	if strings.Contains(msg, "managed identity") || strings.Contains(msg, "imds") {
		return "No managed identity is available here; set auth.mode to `default` and sign in with `az login`, or run on a platform resource with an identity assigned"
	}
	if strings.Contains(msg, "expired") || strings.Contains(msg, "reauthentication") {
		return "The cached credential expired; run `az login` again"
	}
	return "Run `azsam doctor` for credential diagnostics"
}

func hintForDiscovery(err error) string {
	if errors.Is(err, sampler.ErrNoSubscriptions) {
		return "The identity authenticated but sees no subscriptions; it needs Reader access on at least one"
	}
	return "Run `azsam doctor` for diagnostics"
}
