package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lithammer/dedent"
	"github.com/spf13/cobra"

	"github.com/justinnhli/send-gmail/internal/config"
	"github.com/justinnhli/send-gmail/internal/gmail"
	"github.com/justinnhli/send-gmail/internal/instrumentation"
	"github.com/justinnhli/send-gmail/internal/render"
)

var sendExample = dedent.Dedent(`
	# Plain-text email to one recipient
	send-gmail send alice@example.com "Lunch?" "Are you free at noon?"

	# Several recipients, an HTML body and two attachments
	send-gmail send "alice@example.com,bob@example.com" "Report" "<p>See attached.</p>" \
	    --html --attach report.pdf --attach data.csv

	# Markdown body from a template file
	send-gmail send bob@example.com "Welcome" --body-file welcome.md --markdown --var name=Bob`,
)

type sendOptions struct {
	html        bool
	template    bool
	markdown    bool
	attachments []string
	cc          []string
	bcc         []string
	vars        []string
	bodyFile    string
}

func newSendCmd() *cobra.Command {
	var opts sendOptions

	cmd := &cobra.Command{
		Use:   "send TO SUBJECT [BODY]",
		Short: "Send an email",
		Long: `Send an email through the Gmail API.

TO is a comma-separated list of addresses. The body is taken from BODY or
from --body-file. With --var or --template the body is rendered as a Go
template, and with --markdown it is converted to HTML. A reference to a
variable that was not given with --var is an error.`,
		Example: sendExample,
		Args:    cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return runSend(ctx, cmd, args, opts)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&opts.html, "html", false, "Send the body as HTML")
	f.BoolVar(&opts.markdown, "markdown", false, "Render the body from Markdown to HTML")
	f.StringArrayVarP(&opts.attachments, "attach", "a", nil, "Attach a file (repeatable)")
	f.StringSliceVar(&opts.cc, "cc", nil, "Cc recipients (comma-separated or repeatable)")
	f.StringSliceVar(&opts.bcc, "bcc", nil, "Bcc recipients (comma-separated or repeatable)")
	f.BoolVar(&opts.template, "template", false, "Render the body as a template even without --var")
	f.StringArrayVar(&opts.vars, "var", nil, "Template variable KEY=VALUE (repeatable)")
	f.StringVar(&opts.bodyFile, "body-file", "", "Read the body from a file, or - for stdin")

	return cmd
}

func runSend(ctx context.Context, cmd *cobra.Command, args []string, opts sendOptions) error {
	to := splitAddresses(args[0])
	if len(to) == 0 {
		return gmail.ErrNoRecipients
	}

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.close(context.WithoutCancel(ctx))

	// The terminal consent prompt reads the code from stdin too.
	if opts.bodyFile == "-" && a.cfg.Consent == config.ConsentPrompt {
		return fmt.Errorf("--body-file - cannot be combined with consent %q; use consent %q or a body file", config.ConsentPrompt, config.ConsentLoopback)
	}

	source, err := readBody(cmd.InOrStdin(), args[2:], opts.bodyFile)
	if err != nil {
		return err
	}
	body, err := render.Body(source, templateData(opts.vars, opts.template), opts.markdown)
	if err != nil {
		return err
	}

	auth, _, err := a.authorizer(cmd.InOrStdin(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	sender := gmail.NewSender(auth,
		gmail.WithLogger(a.serviceLogger(instrumentation.ServiceGmail)),
		gmail.WithMetrics(a.provider.Metrics()),
		gmail.WithAuditLogger(instrumentation.NewAuditLogger(a.logger, a.instrConf.AuditLogging)),
	)

	res, err := sender.Send(ctx, &gmail.EmailMessage{
		To:          to,
		Cc:          splitAddresses(opts.cc...),
		Bcc:         splitAddresses(opts.bcc...),
		Subject:     args[1],
		Body:        body,
		IsHTML:      opts.html || opts.markdown,
		Attachments: opts.attachments,
	})
	if err != nil {
		return err
	}

	successColor.Fprintf(cmd.OutOrStdout(), "Message sent; id=%s\n", res.ID)
	return nil
}
