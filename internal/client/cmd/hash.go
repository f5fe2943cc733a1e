package cmd

import (
	"bufio"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"fundingintake/internal/shared/passhash"
)

func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:    "hash-password",
		Short:  "Print the Argon2id hash for INTAKE_REVIEWER_PASSWORD_HASH",
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			in := bufio.NewReader(cmd.InOrStdin())
			password, err := readSecret(cmd, cmd.ErrOrStderr(), in, "Password: ")
			if err != nil {
				return err
			}
			if password == "" {
				return errors.New("password must not be empty")
			}
			phc, err := passhash.HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, phc)
			return nil
		},
	}
}
