package azure

import (
	"errors"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/tidwall/gjson"
)

// ErrorMessage extracts a one-line human-readable message from a management
// API error. ARM wraps failures in a JSON envelope; fall back to the error
// code and status when the body is missing or unparseable.
func ErrorMessage(err error) string {
	var respErr *azcore.ResponseError
	if !errors.As(err, &respErr) {
		return err.Error()
	}

	code := respErr.ErrorCode
	message := ""

	if respErr.RawResponse != nil {
		if body, perr := runtime.Payload(respErr.RawResponse); perr == nil && len(body) > 0 {
			if c := gjson.GetBytes(body, "error.code"); c.Exists() {
				code = c.String()
			}
			if m := gjson.GetBytes(body, "error.message"); m.Exists() {
				message = m.String()
			}
		}
	}

	switch {
	case code != "" && message != "":
		return fmt.Sprintf("%s: %s", code, message)
	case message != "":
		return message
	case code != "":
		return fmt.Sprintf("%s (HTTP %d)", code, respErr.StatusCode)
	default:
		return fmt.Sprintf("HTTP %d", respErr.StatusCode)
	}
}

// IsAuthError reports whether the error looks like a failure to
// authenticate rather than a failure of the call itself.
func IsAuthError(err error) bool {
	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		return respErr.StatusCode == 401
	}
	return false
}
