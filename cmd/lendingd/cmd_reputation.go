package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newReputationCommands() *cobra.Command {
	root := &cobra.Command{Use: "reputation", Short: "Reputation and vouching operations"}

	root.AddCommand(&cobra.Command{
		Use:   "vouch <voucher> <borrower> <amount> <token>",
		Short: "Stake amount of token in support of borrower",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			voucher, err := parseAddr(args[0])
			if err != nil {
				return err
			}
			borrower, err := parseAddr(args[1])
			if err != nil {
				return err
			}
			amount, err := parseAmount(args[2])
			if err != nil {
				return err
			}
			tokenID, err := parseAddr(args[3])
			if err != nil {
				return err
			}
			if err := theApp.reputationEngine.AddVouch(voucher, borrower, amount, tokenID); err != nil {
				return err
			}
			fmt.Printf("%s vouched %s of %s for %s\n", voucher.String(), amount.String(), tokenID.String(), borrower.String())
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "unvouch <voucher> <borrower>",
		Short: "Withdraw an active vouch, refunding the remaining stake",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			voucher, err := parseAddr(args[0])
			if err != nil {
				return err
			}
			borrower, err := parseAddr(args[1])
			if err != nil {
				return err
			}
			if err := theApp.reputationEngine.RemoveVouch(voucher, borrower); err != nil {
				return err
			}
			fmt.Printf("%s removed vouch for %s\n", voucher.String(), borrower.String())
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "show <address>",
		Short: "Show a reputation profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := parseAddr(args[0])
			if err != nil {
				return err
			}
			profile, ok, err := theApp.reputationEngine.Profile(addr)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Printf("%s has no reputation profile yet\n", addr.String())
				return nil
			}
			fmt.Printf("%s: score=%d loansTaken=%d loansGiven=%d defaulted=%d timesVouched=%d defaultedAsVoucher=%d activeStake=%s\n",
				addr.String(), profile.CurrentScore, profile.LoansTaken, profile.LoansGiven, profile.LoansDefaulted,
				profile.TimesVouched, profile.TimesDefaultedAsVoucher, profile.VouchingStakeActive.String())
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "vouches-given <voucher>",
		Short: "List the current vouch record for every borrower an address has vouched for",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := parseAddr(args[0])
			if err != nil {
				return err
			}
			vouches, err := theApp.reputationEngine.VouchesGiven(addr)
			if err != nil {
				return err
			}
			for _, v := range vouches {
				fmt.Printf("borrower=%s token=%s staked=%s active=%v\n", v.Borrower.String(), v.Token.String(), v.StakedAmount.String(), v.Active)
			}
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "vouches-received <borrower>",
		Short: "List the current vouch record for every voucher that has vouched for an address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := parseAddr(args[0])
			if err != nil {
				return err
			}
			vouches, err := theApp.reputationEngine.VouchesReceived(addr)
			if err != nil {
				return err
			}
			for _, v := range vouches {
				fmt.Printf("voucher=%s token=%s staked=%s active=%v\n", v.Voucher.String(), v.Token.String(), v.StakedAmount.String(), v.Active)
			}
			return nil
		},
	})

	return root
}
