package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/justinnhli/send-gmail/internal/render"
)

func newRenderCmd() *cobra.Command {
	var (
		markdown bool
		strict   bool
		vars     []string
		bodyFile string
	)

	cmd := &cobra.Command{
		Use:   "render [BODY]",
		Short: "Print a body as it would be sent",
		Long: `Render a body with the same --var and --markdown handling as send and
print the result. Nothing is sent and no authorization is needed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := readBody(cmd.InOrStdin(), args, bodyFile)
			if err != nil {
				return err
			}
			out, err := render.Body(source, templateData(vars, strict), markdown)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}

	cmd.Flags().BoolVar(&markdown, "markdown", false, "Render the body from Markdown to HTML")
	cmd.Flags().BoolVar(&strict, "template", false, "Render the body as a template even without --var")
	cmd.Flags().StringArrayVar(&vars, "var", nil, "Template variable KEY=VALUE (repeatable)")
	cmd.Flags().StringVar(&bodyFile, "body-file", "", "Read the body from a file, or - for stdin")
	return cmd
}
