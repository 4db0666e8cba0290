package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/justinnhli/send-gmail/internal/config"
	"github.com/justinnhli/send-gmail/internal/google"
	"github.com/justinnhli/send-gmail/internal/instrumentation"
	"github.com/justinnhli/send-gmail/internal/logging"
	"github.com/justinnhli/send-gmail/internal/render"
)

var (
	successColor = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed, color.Bold)
)

// app holds what every command needs once flags are parsed.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	provider  *instrumentation.Provider
	instrConf instrumentation.Config
}

// newApp loads configuration and sets up logging and instrumentation. The
// caller must call close.
func newApp(ctx context.Context, cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(configPath, cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)

	instrConf := instrumentation.DefaultConfig()
	instrConf.ServiceVersion = version
	provider, err := instrumentation.NewProvider(ctx, instrConf)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize instrumentation: %w", err)
	}

	return &app{cfg: cfg, logger: logger, provider: provider, instrConf: instrConf}, nil
}

func (a *app) close(ctx context.Context) {
	if err := a.provider.Shutdown(ctx); err != nil {
		a.logger.Warn("failed to flush instrumentation", logging.Err(err))
	}
}

// serviceLogger tags every record with the Google service it concerns.
func (a *app) serviceLogger(service string) *logging.SlogAdapter {
	return logging.NewSlogAdapter(a.logger).With(logging.Service(service))
}

// store opens the configured token store and describes where it lives.
func (a *app) store() (google.Store, string, error) {
	adapter := logging.NewSlogAdapter(a.logger)
	switch a.cfg.TokenStore {
	case config.TokenStoreKeyring:
		ring, err := google.OpenKeyring(filepath.Dir(a.cfg.TokenPath))
		if err != nil {
			return nil, "", err
		}
		return google.NewKeyringStore(ring, adapter), "the system keyring", nil
	default:
		return google.NewFileStore(a.cfg.TokenPath, adapter), a.cfg.TokenPath, nil
	}
}

// authorizer builds the Authorizer from the client-secret descriptor.
func (a *app) authorizer(in io.Reader, out io.Writer) (*google.Authorizer, string, error) {
	conf, err := google.LoadClientConfig(a.cfg.ClientSecret, a.cfg.ScopeSet())
	if err != nil {
		return nil, "", err
	}

	store, where, err := a.store()
	if err != nil {
		return nil, "", err
	}

	var prompter google.ConsentPrompter
	switch a.cfg.Consent {
	case config.ConsentLoopback:
		prompter = google.NewLoopbackPrompter(out, browser.OpenURL)
	default:
		prompter = google.NewTerminalPrompter(in, out)
	}

	auth := google.NewAuthorizer(conf, store, prompter,
		google.WithLogger(a.serviceLogger(instrumentation.ServiceOAuth)),
		google.WithMetrics(a.provider.Metrics()),
	)
	return auth, where, nil
}

// splitAddresses splits comma-separated address arguments, dropping blanks.
func splitAddresses(values ...string) []string {
	var out []string
	for _, v := range values {
		for _, addr := range strings.Split(v, ",") {
			if addr = strings.TrimSpace(addr); addr != "" {
				out = append(out, addr)
			}
		}
	}
	return out
}

// readBody returns BODY or the contents of bodyFile; "-" reads stdin.
func readBody(stdin io.Reader, args []string, bodyFile string) (string, error) {
	if bodyFile != "" {
		if len(args) > 0 {
			return "", fmt.Errorf("BODY argument and --body-file are mutually exclusive")
		}
		var data []byte
		var err error
		if bodyFile == "-" {
			data, err = io.ReadAll(stdin)
		} else {
			data, err = os.ReadFile(bodyFile)
		}
		if err != nil {
			return "", fmt.Errorf("failed to read body file: %w", err)
		}
		return string(data), nil
	}
	if len(args) == 0 {
		return "", fmt.Errorf("a BODY argument or --body-file is required")
	}
	return args[0], nil
}

// templateData returns the --var data, or empty data when --template asks
// for strict rendering without any variables.
func templateData(vars []string, force bool) map[string]any {
	data := render.ParseVars(vars)
	if data == nil && force {
		data = map[string]any{}
	}
	return data
}

// expiryText describes when cred stops being usable.
func expiryText(cred *google.Credential) string {
	if cred.Expiry.IsZero() {
		return "no expiry"
	}
	return "expires " + cred.Expiry.Local().Format("2006-01-02 15:04")
}

func printError(w io.Writer, err error) {
	errorColor.Fprintf(w, "An error occurred: %v\n", err)
}
