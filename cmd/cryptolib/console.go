package main

import (
	"github.com/cryptolib/cryptolib/chain"
	"github.com/cryptolib/cryptolib/console"
	"github.com/spf13/cobra"
	"os"
)

func newConsoleCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "console",
		Short: "Interactive library menu against the deployed contract",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.load()
			if err != nil {
				return err
			}

			client, err := chain.NewClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			return console.New(client, os.Stdin, os.Stdout, c).Run(cmd.Context())
		},
	}
}

func newCheckoutsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "checkouts",
		Short: "List the books checked out by the configured wallet",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.load()
			if err != nil {
				return err
			}

			client, err := chain.NewClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			return console.PrintCheckouts(cmd.Context(), client, os.Stdout)
		},
	}
}
