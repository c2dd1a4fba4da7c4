package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wasconverge/wasconverge/internal/secrets"
)

func newSecretCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Obfuscate or recover stored secret values",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "encode <plaintext>",
		Short: "Obfuscate a value for use in configuration documents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), secrets.Obfuscate(args[0]))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "decode <stored>",
		Short: "Recover the plaintext of a stored value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plain, err := secrets.Deobfuscate(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), plain)
			return nil
		},
	})

	return cmd
}
