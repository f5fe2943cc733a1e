package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"fundingintake/internal/client/api"
	"fundingintake/internal/client/gate"
	"fundingintake/internal/client/reviewer"
	"fundingintake/internal/client/tui"
)

func newReviewCmd(o *options) *cobra.Command {
	var plain bool
	cmd := &cobra.Command{
		Use:    "review",
		Short:  "Reviewer access",
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReview(cmd, o, plain)
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "Print submissions once instead of opening the panel")
	return cmd
}

func runReview(cmd *cobra.Command, o *options, plain bool) error {
	out := cmd.OutOrStdout()
	in := bufio.NewReader(cmd.InOrStdin())
	logger := o.logger()
	defer func() { _ = logger.Sync() }()

	client := api.New(o.serverURL, nil)
	g := gate.New(client, logger)
	if err := g.Reveal(); err != nil {
		return err
	}

	for g.Mode() == gate.ModeLoginPrompt {
		email, err := readLine(out, in, "Email: ")
		if err != nil {
			return err
		}
		password, err := readSecret(cmd, out, in, "Password: ")
		if err != nil {
			return err
		}
		if err := g.SetCredentials(email, password); err != nil {
			return err
		}
		err = g.Login(cmd.Context())
		switch {
		case err == nil:
		case errors.Is(err, gate.ErrInvalidCredentials):
			fmt.Fprintln(out, g.Error())
			again, rerr := readLine(out, in, "Try again? [Y/n] ")
			if rerr != nil {
				return rerr
			}
			if again = strings.TrimSpace(again); strings.EqualFold(again, "n") || strings.EqualFold(again, "no") {
				return g.Cancel()
			}
		default:
			_ = g.Cancel()
			return err
		}
	}

	sess, _ := g.Session()
	lister := client.WithToken(sess.Token)
	if plain {
		defer func() { _ = g.Leave() }()
		return printSubmissions(out, lister, logger)
	}

	notify, updates := tui.Notifier()
	view := reviewer.NewView(lister, reviewer.WithOnChange(notify), reviewer.WithLogger(logger))
	final, err := tea.NewProgram(tui.New(view, updates),
		tea.WithAltScreen(),
		tea.WithContext(cmd.Context()),
	).Run()
	view.Close()
	if lerr := g.Leave(); lerr != nil {
		logger.Debug("leave reviewer view", zap.Error(lerr))
	}
	if err != nil {
		return err
	}
	if m, ok := final.(tui.Model); ok && m.BackToForm() {
		return runApply(cmd, o, in)
	}
	return nil
}

func printSubmissions(out io.Writer, lister reviewer.Lister, logger *zap.Logger) error {
	view := reviewer.NewView(lister, reviewer.WithLogger(logger))
	defer view.Close()
	<-view.Open()
	return reviewer.Render(out, view.Snapshot())
}

// readLine returns one input line without its line ending. Credentials are
// used exactly as typed.
func readLine(out io.Writer, in *bufio.Reader, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	line, err := in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readSecret reads without echo from a terminal and falls back to a plain
// line for pipes.
func readSecret(cmd *cobra.Command, out io.Writer, in *bufio.Reader, prompt string) (string, error) {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(out, prompt)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		return string(b), err
	}
	return readLine(out, in, prompt)
}
