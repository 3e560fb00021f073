package azure

import (
	"context"
	"fmt"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
)

// armScope is the audience for management plane tokens
const armScope = "https://management.azure.com/.default"

// AuthMode selects how tokens are acquired
type AuthMode string

const (
	// AuthModeDefault walks the full credential chain: environment,
	// workload identity, managed identity, then developer tooling.
	AuthModeDefault AuthMode = "default"
	// AuthModeManagedIdentity goes straight to the platform-assigned
	// identity. This is what scheduled runs inside the platform use.
	AuthModeManagedIdentity AuthMode = "managed-identity"
)

// ParseAuthMode validates a mode string from flags or config
func ParseAuthMode(s string) (AuthMode, error) {
	switch AuthMode(s) {
	case AuthModeDefault, AuthModeManagedIdentity:
		return AuthMode(s), nil
	case "":
		return AuthModeDefault, nil
	}
	return "", fmt.Errorf("unknown auth mode %q (want default or managed-identity)", s)
}

// Options configures credential construction
type Options struct {
	Mode AuthMode
	// ClientID pins a user-assigned managed identity. Empty means the
	// system-assigned identity (or whatever the chain resolves).
	ClientID string
	// TenantID is the home tenant for the credential chain. Empty lets
	// the platform pick the identity's own tenant.
	TenantID string
}

// Client builds and caches per-tenant credentials and hands out scoped
// management clients. All methods are safe for concurrent use.
type Client struct {
	opts Options

	mu    sync.Mutex
	creds map[string]azcore.TokenCredential // keyed by tenant id, "" = home tenant
}

// NewClient creates a management client factory
func NewClient(opts Options) *Client {
	if opts.Mode == "" {
		opts.Mode = AuthModeDefault
	}
	return &Client{
		opts:  opts,
		creds: make(map[string]azcore.TokenCredential),
	}
}

// credential returns a token credential able to authenticate against the
// given tenant, building and caching it on first use.
func (c *Client) credential(tenantID string) (azcore.TokenCredential, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cred, ok := c.creds[tenantID]; ok {
		return cred, nil
	}

	cred, err := c.newCredential(tenantID)
	if err != nil {
		return nil, err
	}
	c.creds[tenantID] = cred
	return cred, nil
}

func (c *Client) newCredential(tenantID string) (azcore.TokenCredential, error) {
	switch c.opts.Mode {
	case AuthModeManagedIdentity:
		// Managed identity tokens are always issued by the identity's
		// home tenant; the tenant hint is ignored here.
		opts := &azidentity.ManagedIdentityCredentialOptions{}
		if c.opts.ClientID != "" {
			opts.ID = azidentity.ClientID(c.opts.ClientID)
		}
		return azidentity.NewManagedIdentityCredential(opts)
	default:
		opts := &azidentity.DefaultAzureCredentialOptions{
			// Guest tenants the identity can see are fair game; without
			// this the chain refuses cross-tenant token requests.
			AdditionallyAllowedTenants: []string{"*"},
		}
		if tenantID != "" {
			opts.TenantID = tenantID
		} else if c.opts.TenantID != "" {
			opts.TenantID = c.opts.TenantID
		}
		return azidentity.NewDefaultAzureCredential(opts)
	}
}

// Verify acquires a management plane token without calling any API.
// Used by apply before touching anything and by doctor.
func (c *Client) Verify(ctx context.Context) error {
	cred, err := c.credential("")
	if err != nil {
		return err
	}
	_, err = cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{armScope}})
	return err
}
