package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newAdminCommands groups operator-only controls: per-module pause switches
// and a demo token faucet for exercising the protocol against in-memory or
// local goleveldb state without a real token contract behind it.
func newAdminCommands() *cobra.Command {
	root := &cobra.Command{Use: "admin", Short: "Operator controls: module pausing and the demo token faucet"}

	root.AddCommand(&cobra.Command{
		Use:   "pause <module>",
		Short: "Pause a module (registry, reputation, lending)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			theApp.pauses.SetPaused(args[0], true)
			fmt.Printf("%s paused\n", args[0])
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "unpause <module>",
		Short: "Unpause a module (registry, reputation, lending)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			theApp.pauses.SetPaused(args[0], false)
			fmt.Printf("%s unpaused\n", args[0])
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "status <module>",
		Short: "Show whether a module is paused",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("%s paused=%v\n", args[0], theApp.pauses.IsPaused(args[0]))
			return nil
		},
	})

	root.AddCommand(newTokenCommands())
	return root
}

func newTokenCommands() *cobra.Command {
	token := &cobra.Command{Use: "token", Short: "Demo token faucet backing the in-memory/leveldb token ledgers"}

	token.AddCommand(&cobra.Command{
		Use:   "mint <tokenId> <address> <amount>",
		Short: "Mint amount of tokenId to address out of thin air, for demo setups",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			tokenID, err := parseAddr(args[0])
			if err != nil {
				return err
			}
			addr, err := parseAddr(args[1])
			if err != nil {
				return err
			}
			amount, err := parseAmount(args[2])
			if err != nil {
				return err
			}
			t, err := theApp.token(tokenID)
			if err != nil {
				return err
			}
			t.Mint(addr, amount)
			fmt.Printf("minted %s of %s to %s\n", amount.String(), tokenID.String(), addr.String())
			return nil
		},
	})

	token.AddCommand(&cobra.Command{
		Use:   "approve <tokenId> <owner> <spender> <amount>",
		Short: "Approve spender to move amount of tokenId from owner",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			tokenID, err := parseAddr(args[0])
			if err != nil {
				return err
			}
			owner, err := parseAddr(args[1])
			if err != nil {
				return err
			}
			spender, err := parseAddr(args[2])
			if err != nil {
				return err
			}
			amount, err := parseAmount(args[3])
			if err != nil {
				return err
			}
			t, err := theApp.token(tokenID)
			if err != nil {
				return err
			}
			if err := t.Approve(owner, spender, amount); err != nil {
				return err
			}
			fmt.Printf("%s approved %s to spend %s of %s\n", owner.String(), spender.String(), amount.String(), tokenID.String())
			return nil
		},
	})

	token.AddCommand(&cobra.Command{
		Use:   "balance <tokenId> <address>",
		Short: "Show an address's balance of tokenId",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tokenID, err := parseAddr(args[0])
			if err != nil {
				return err
			}
			addr, err := parseAddr(args[1])
			if err != nil {
				return err
			}
			t, err := theApp.token(tokenID)
			if err != nil {
				return err
			}
			balance, err := t.BalanceOf(addr)
			if err != nil {
				return err
			}
			fmt.Println(balance.String())
			return nil
		},
	})

	return token
}
