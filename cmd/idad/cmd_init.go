package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/iov-one/ida"
	"github.com/iov-one/ida/errors"
	"github.com/spf13/cobra"
)

func newInitCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "init <genesis.json>",
		Short: "Load the genesis state into the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := flags.config()
			if err != nil {
				return err
			}
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return errors.Wrapf(errors.ErrInput, "read genesis: %s", err)
			}
			var opts ida.Options
			if err := json.Unmarshal(raw, &opts); err != nil {
				return errors.Wrapf(errors.ErrInput, "parse genesis: %s", err)
			}
			logger, err := newLogger(cmd.ErrOrStderr(), conf.LogLevel)
			if err != nil {
				return err
			}
			n, err := newNode(cmd.Context(), conf, logger, nil)
			if err != nil {
				return err
			}
			defer n.close()

			id, err := n.ledger.InitGenesis(opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "genesis loaded at height %d, hash %X\n", id.Version, id.Hash)
			return nil
		},
	}
}
