package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fundingintake/internal/client/handoff"
	"fundingintake/internal/shared/logging"
)

const defaultServerURL = "http://localhost:8080"

// Environment variables providing flag defaults.
const (
	envServerURL   = "INTAKE_SERVER_URL"
	envDestination = "INTAKE_HANDOFF_DESTINATION"
)

type options struct {
	serverURL   string
	destination string
	noBrowser   bool
	verbose     bool
}

func (o *options) logger() *zap.Logger {
	if !o.verbose {
		return zap.NewNop()
	}
	l, err := logging.New("debug", "console")
	if err != nil {
		return zap.NewNop()
	}
	return l
}

func NewRootCmd(version, buildDate string) *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:           "intake",
		Short:         "Business funding application",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := root.PersistentFlags()
	flags.StringVar(&o.serverURL, "server", envOr(envServerURL, defaultServerURL), "Intake server base URL")
	flags.StringVar(&o.destination, "handoff-destination", envOr(envDestination, handoff.DefaultDestination), "Messaging number receiving the handoff")
	flags.BoolVar(&o.noBrowser, "no-browser", false, "Print the handoff link instead of opening a browser")
	flags.BoolVarP(&o.verbose, "verbose", "v", false, "Log diagnostics to stderr")
	_ = flags.MarkHidden("handoff-destination")

	root.AddCommand(newVersionCmd(version, buildDate))
	root.AddCommand(newApplyCmd(o))
	root.AddCommand(newReviewCmd(o))
	root.AddCommand(newHashPasswordCmd())
	return root
}

func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}
