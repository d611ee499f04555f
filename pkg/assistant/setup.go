package assistant

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/papercomputeco/wellchat/pkg/client"
	"github.com/papercomputeco/wellchat/pkg/config"
	"github.com/papercomputeco/wellchat/pkg/credentials"
)

// SetupOptions are the command line inputs that shape an Assistant beyond
// the effective Config.
type SetupOptions struct {
	// ConfigDir overrides the .wellchat/ directory holding credentials.toml.
	ConfigDir string

	// APIKey is an explicit key, e.g. from --api-key. It wins over the
	// environment and credentials.toml.
	APIKey string

	// ContextFile is read and rendered into every prompt when set.
	ContextFile string

	Logger *slog.Logger
}

// Setup resolves the API key, reads the context file and creates the
// Assistant. A missing key is not an error here; see New.
func Setup(cfg *config.Config, so SetupOptions) (*Assistant, error) {
	if cfg == nil {
		return nil, errors.New("nil config")
	}

	mgr, err := credentials.NewManager(so.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("loading credentials: %w", err)
	}

	resolved, err := mgr.Resolve(so.APIKey, cfg.API.Provider)
	if err != nil {
		return nil, fmt.Errorf("resolving API key: %w", err)
	}

	opts := []Option{}
	if so.Logger != nil {
		opts = append(opts, WithLogger(so.Logger))
		if resolved.Found() {
			so.Logger.Debug("using API key",
				"source", string(resolved.Source),
				"key", credentials.Mask(resolved.Key),
			)
		}
	}

	if so.ContextFile != "" {
		data, err := os.ReadFile(so.ContextFile)
		if err != nil {
			return nil, fmt.Errorf("reading context file: %w", err)
		}
		opts = append(opts, WithBackground(string(data)))
	}

	return New(cfg, resolved.Key, opts...)
}

// Explain adds a hint to errors the user can fix on their own. Other errors
// are returned unchanged.
func Explain(err error, provider string) error {
	if errors.Is(err, client.ErrMissingCredential) {
		hint := "pass --api-key or run 'wellchat auth " + provider + "'"
		if vars := credentials.EnvVarsForProvider(provider); len(vars) > 0 {
			hint = "set " + strings.Join(vars, " or ") + ", " + hint
		}
		return fmt.Errorf("%w: %s", err, hint)
	}

	var reqErr *client.RequestError
	if errors.As(err, &reqErr) && reqErr.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w (check your API key)", err)
	}

	return err
}
