package main

import (
	"fmt"
	"math/big"

	"github.com/spf13/cobra"

	"github.com/GabinFay/uncle-credit-p2p-lending/core/types"
)

func newLendingCommands() *cobra.Command {
	root := &cobra.Command{Use: "lending", Short: "Loan offer, request, agreement and repayment operations"}

	root.AddCommand(newOfferCommands(), newRequestCommands(), newAgreementCommands())
	return root
}

func newOfferCommands() *cobra.Command {
	offer := &cobra.Command{Use: "offer", Short: "Standing lend offers"}

	createCmd := &cobra.Command{
		Use:   "create <lender> <amount> <token> <rateBps> <durationSeconds> <collateralAmount> <collateralToken>",
		Short: "Post a standing offer to lend, escrowing amount of token",
		Args:  cobra.ExactArgs(7),
		RunE: func(cmd *cobra.Command, args []string) error {
			lender, err := parseAddr(args[0])
			if err != nil {
				return err
			}
			if !theApp.rateLimiter.Allow(lender) {
				theApp.metrics.IncRateLimitRejection("lending")
				return fmt.Errorf("rate limit exceeded for %s", lender.String())
			}
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			tok, err := parseAddr(args[2])
			if err != nil {
				return err
			}
			rateBps, err := parseUint16(args[3])
			if err != nil {
				return err
			}
			duration, err := parseUint64(args[4])
			if err != nil {
				return err
			}
			collateralAmount, err := parseAmount(args[5])
			if err != nil {
				return err
			}
			collateralToken, err := parseAddr(args[6])
			if err != nil {
				return err
			}
			id, err := theApp.lendingEngine.CreateOffer(lender, amount, tok, rateBps, duration, collateralAmount, collateralToken)
			if err != nil {
				return err
			}
			fmt.Printf("offer %x created\n", id)
			return nil
		},
	}

	acceptCmd := &cobra.Command{
		Use:   "accept <borrower> <offerId>",
		Short: "Accept a standing offer, originating a loan agreement",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			borrower, err := parseAddr(args[0])
			if err != nil {
				return err
			}
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			agreementID, err := theApp.lendingEngine.AcceptOffer(borrower, id)
			if err != nil {
				return err
			}
			fmt.Printf("agreement %x created\n", agreementID)
			return nil
		},
	}

	showCmd := &cobra.Command{
		Use:   "show <offerId>",
		Short: "Show a loan offer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			o, ok, err := theApp.lendingEngine.Offer(id)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("offer not found")
				return nil
			}
			fmt.Printf("lender=%s amount=%s token=%s rateBps=%d durationSeconds=%d active=%v fulfilled=%v\n",
				o.Lender.String(), o.Amount.String(), o.Token.String(), o.InterestRateBps, o.DurationSeconds, o.Active, o.Fulfilled)
			return nil
		},
	}

	offer.AddCommand(createCmd, acceptCmd, showCmd)
	return offer
}

func newRequestCommands() *cobra.Command {
	request := &cobra.Command{Use: "request", Short: "Standing borrow requests"}

	createCmd := &cobra.Command{
		Use:   "create <borrower> <amount> <token> <rateBps> <durationSeconds> <collateralAmount> <collateralToken>",
		Short: "Post a standing request to borrow",
		Args:  cobra.ExactArgs(7),
		RunE: func(cmd *cobra.Command, args []string) error {
			borrower, err := parseAddr(args[0])
			if err != nil {
				return err
			}
			if !theApp.rateLimiter.Allow(borrower) {
				theApp.metrics.IncRateLimitRejection("lending")
				return fmt.Errorf("rate limit exceeded for %s", borrower.String())
			}
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			tok, err := parseAddr(args[2])
			if err != nil {
				return err
			}
			rateBps, err := parseUint16(args[3])
			if err != nil {
				return err
			}
			duration, err := parseUint64(args[4])
			if err != nil {
				return err
			}
			collateralAmount, err := parseAmount(args[5])
			if err != nil {
				return err
			}
			collateralToken, err := parseAddr(args[6])
			if err != nil {
				return err
			}
			id, err := theApp.lendingEngine.CreateRequest(borrower, amount, tok, rateBps, duration, collateralAmount, collateralToken)
			if err != nil {
				return err
			}
			fmt.Printf("request %x created\n", id)
			return nil
		},
	}

	fundCmd := &cobra.Command{
		Use:   "fund <lender> <requestId>",
		Short: "Fund a standing borrow request, originating a loan agreement",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			lender, err := parseAddr(args[0])
			if err != nil {
				return err
			}
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			agreementID, err := theApp.lendingEngine.FundRequest(lender, id)
			if err != nil {
				return err
			}
			fmt.Printf("agreement %x created\n", agreementID)
			return nil
		},
	}

	showCmd := &cobra.Command{
		Use:   "show <requestId>",
		Short: "Show a loan request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			r, ok, err := theApp.lendingEngine.Request(id)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("request not found")
				return nil
			}
			fmt.Printf("borrower=%s amount=%s token=%s rateBps=%d durationSeconds=%d active=%v fulfilled=%v\n",
				r.Borrower.String(), r.Amount.String(), r.Token.String(), r.ProposedInterestRateBps, r.ProposedDurationSeconds, r.Active, r.Fulfilled)
			return nil
		},
	}

	request.AddCommand(createCmd, fundCmd, showCmd)
	return request
}

func newAgreementCommands() *cobra.Command {
	agreement := &cobra.Command{Use: "agreement", Short: "Live loan agreement operations"}

	showCmd := &cobra.Command{
		Use:   "show <agreementId>",
		Short: "Show a loan agreement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			a, ok, err := theApp.lendingEngine.Agreement(id)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("agreement not found")
				return nil
			}
			fmt.Printf("lender=%s borrower=%s principal=%s token=%s status=%s dueDate=%d amountPaid=%s totalDue=%s\n",
				a.Lender.String(), a.Borrower.String(), a.PrincipalAmount.String(), a.LoanToken.String(),
				a.Status.String(), a.DueDate, a.AmountPaid.String(), a.TotalDue().String())
			return nil
		},
	}

	repayCmd := &cobra.Command{
		Use:   "repay <caller> <agreementId> <amount>",
		Short: "Make a repayment towards an agreement",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := parseAddr(args[0])
			if err != nil {
				return err
			}
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			amount, err := parseAmount(args[2])
			if err != nil {
				return err
			}
			if err := theApp.lendingEngine.Repay(caller, id, amount); err != nil {
				return err
			}
			fmt.Println("repayment accepted")
			return nil
		},
	}

	requestModCmd := &cobra.Command{
		Use:   "request-modification <caller> <agreementId> <type> <value>",
		Short: "Request a due-date extension (type=extension) or partial-payment agreement (type=partial)",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := parseAddr(args[0])
			if err != nil {
				return err
			}
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			modType, err := parseModificationType(args[2])
			if err != nil {
				return err
			}
			value, err := parseInt64(args[3])
			if err != nil {
				return err
			}
			if err := theApp.lendingEngine.RequestModification(caller, id, modType, value); err != nil {
				return err
			}
			fmt.Println("modification requested")
			return nil
		},
	}

	respondModCmd := &cobra.Command{
		Use:   "respond-modification <caller> <agreementId> <approved>",
		Short: "Approve or reject a pending modification request",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := parseAddr(args[0])
			if err != nil {
				return err
			}
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			approved, err := parseBool(args[2])
			if err != nil {
				return err
			}
			if err := theApp.lendingEngine.RespondToModification(caller, id, approved); err != nil {
				return err
			}
			fmt.Println("modification response recorded")
			return nil
		},
	}

	defaultCmd := &cobra.Command{
		Use:   "default <caller> <agreementId>",
		Short: "Declare a past-due agreement in default, seizing any collateral",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := parseAddr(args[0])
			if err != nil {
				return err
			}
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			if err := theApp.lendingEngine.HandleDefault(caller, id); err != nil {
				return err
			}
			fmt.Println("agreement defaulted")
			return nil
		},
	}

	lenderCmd := &cobra.Command{
		Use:   "by-lender <address>",
		Short: "List agreement ids where address is the lender",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := parseAddr(args[0])
			if err != nil {
				return err
			}
			ids, err := theApp.lendingEngine.LenderAgreements(addr)
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Printf("%x\n", id)
			}
			return nil
		},
	}

	borrowerCmd := &cobra.Command{
		Use:   "by-borrower <address>",
		Short: "List agreement ids where address is the borrower",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := parseAddr(args[0])
			if err != nil {
				return err
			}
			ids, err := theApp.lendingEngine.BorrowerAgreements(addr)
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Printf("%x\n", id)
			}
			return nil
		},
	}

	agreement.AddCommand(showCmd, repayCmd, requestModCmd, respondModCmd, defaultCmd, lenderCmd, borrowerCmd)
	return agreement
}

func parseModificationType(s string) (types.ModificationType, error) {
	switch s {
	case "extension", "due_date_extension":
		return types.ModificationDueDateExtension, nil
	case "partial", "partial_payment_agreement":
		return types.ModificationPartialPaymentAgreement, nil
	default:
		return types.ModificationNone, fmt.Errorf("unknown modification type %q (want \"extension\" or \"partial\")", s)
	}
}

func parseUint16(s string) (uint16, error) {
	v, err := parseInt64(s)
	if err != nil {
		return 0, err
	}
	if v < 0 || v > 0xFFFF {
		return 0, fmt.Errorf("value %d out of uint16 range", v)
	}
	return uint16(v), nil
}

func parseUint64(s string) (uint64, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return 0, fmt.Errorf("invalid non-negative integer %q", s)
	}
	return v.Uint64(), nil
}

func parseInt64(s string) (int64, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return 0, fmt.Errorf("invalid integer %q", s)
	}
	return v.Int64(), nil
}

func parseBool(s string) (bool, error) {
	switch s {
	case "true", "yes", "1":
		return true, nil
	case "false", "no", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean %q", s)
	}
}
