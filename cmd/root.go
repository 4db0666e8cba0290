package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/justinnhli/send-gmail/internal/google"
)

// rootCmd represents the base command for the send-gmail application
var rootCmd = &cobra.Command{
	Use:   "send-gmail",
	Short: "Send email through the Gmail API from the command line",
	Long: `send-gmail sends a plain-text or HTML email, optionally rendered from
Markdown or a template and with file attachments, through the Gmail API.

The first run opens an OAuth2 consent flow; the resulting token is stored
and refreshed automatically on later runs.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// version will be set by main
var version = "dev"

// configPath is the --config flag value
var configPath string

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "send-gmail version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		printError(rootCmd.ErrOrStderr(), err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", google.DefaultConfigPath(), "Path of the YAML configuration file")
	pf.String("client-secret", "", "Path of the OAuth client-secret JSON downloaded from the Google Cloud console")
	pf.String("token-path", "", "Path of the stored OAuth token")
	pf.String("token-store", "", "Where to store the OAuth token: file or keyring")
	pf.String("consent", "", "How to obtain consent: prompt (paste the code) or loopback (local redirect)")
	pf.String("log-level", "", "Log level: debug, info, warn, error")
	pf.String("log-format", "", "Log format: text or json")

	rootCmd.AddCommand(newSendCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newRenderCmd())
	rootCmd.AddCommand(newVersionCmd())
}
