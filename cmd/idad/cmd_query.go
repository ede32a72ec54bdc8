package main

import (
	"encoding/json"

	"github.com/iov-one/ida"
	"github.com/spf13/cobra"
)

func newQueryCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Read the committed ledger state",
	}

	// query opens the store and prints the JSON result of fn.
	query := func(cmd *cobra.Command, fn func(n *node, db ida.ReadOnlyKVStore) (interface{}, error)) error {
		conf, err := flags.config()
		if err != nil {
			return err
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

		var res interface{}
		err = n.ledger.View(func(db ida.ReadOnlyKVStore) error {
			var err error
			res, err = fn(n, db)
			return err
		})
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "index <publisher> <index-id>",
			Short: "Show an index",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				publisher, err := resolveAccount(args[0])
				if err != nil {
					return err
				}
				id, err := parseIndexID(args[1])
				if err != nil {
					return err
				}
				return query(cmd, func(n *node, db ida.ReadOnlyKVStore) (interface{}, error) {
					return n.ctrl.GetIndex(db, publisher, id)
				})
			},
		},
		&cobra.Command{
			Use:   "subscription <publisher> <index-id> <subscriber>",
			Short: "Show a subscription",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				publisher, err := resolveAccount(args[0])
				if err != nil {
					return err
				}
				id, err := parseIndexID(args[1])
				if err != nil {
					return err
				}
				subscriber, err := resolveAccount(args[2])
				if err != nil {
					return err
				}
				return query(cmd, func(n *node, db ida.ReadOnlyKVStore) (interface{}, error) {
					return n.ctrl.GetSubscription(db, publisher, id, subscriber)
				})
			},
		},
		&cobra.Command{
			Use:   "subscriptions <subscriber>",
			Short: "List live subscriptions of a subscriber",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				subscriber, err := resolveAccount(args[0])
				if err != nil {
					return err
				}
				return query(cmd, func(n *node, db ida.ReadOnlyKVStore) (interface{}, error) {
					return n.ctrl.ListBySubscriber(db, subscriber)
				})
			},
		},
		&cobra.Command{
			Use:   "balance <account>",
			Short: "Show the realtime balance of an account",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return query(cmd, func(n *node, db ida.ReadOnlyKVStore) (interface{}, error) {
					return accountBalance(n, db, args[0])
				})
			},
		},
	)
	return cmd
}
