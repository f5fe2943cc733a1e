package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"fundingintake/internal/client/api"
	"fundingintake/internal/client/console"
	"fundingintake/internal/client/handoff"
	"fundingintake/internal/client/wizard"
)

func newApplyCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "apply",
		Short: "Fill in and submit a funding application",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cmd, o, cmd.InOrStdin())
		},
	}
}

func runApply(cmd *cobra.Command, o *options, in io.Reader) error {
	out := cmd.OutOrStdout()
	logger := o.logger()
	defer func() { _ = logger.Sync() }()

	client := api.New(o.serverURL, nil)
	pipeline := wizard.NewPipeline(client, o.opener(out),
		wizard.WithDestination(o.destination),
		wizard.WithPipelineLogger(logger),
	)
	ctrl := wizard.NewController(pipeline,
		wizard.WithStepHook(console.StepHeader(out)),
		wizard.WithLogger(logger),
	)

	err := console.New(in, out, ctrl).Run(cmd.Context())
	if errors.Is(err, console.ErrAborted) {
		fmt.Fprintln(out, "Application not submitted.")
		return nil
	}
	return err
}

// opener prints the link when browsers are disabled or fail to start.
func (o *options) opener(out io.Writer) handoff.Opener {
	printer := handoff.PrintOpener{W: out}
	if o.noBrowser {
		return printer
	}
	return handoff.OpenerFunc(func(link string) error {
		if err := (handoff.BrowserOpener{}).Open(link); err != nil {
			_ = printer.Open(link)
			return err
		}
		return nil
	})
}
