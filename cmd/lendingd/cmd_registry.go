package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRegistryCommands() *cobra.Command {
	root := &cobra.Command{Use: "registry", Short: "UserRegistry operations"}

	root.AddCommand(&cobra.Command{
		Use:   "register <address> <name>",
		Short: "Register an address under a display name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := parseAddr(args[0])
			if err != nil {
				return err
			}
			if err := theApp.registryEngine.Register(addr, args[1]); err != nil {
				return err
			}
			fmt.Printf("registered %s as %q\n", addr.String(), args[1])
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "update-name <address> <name>",
		Short: "Update an already-registered address's display name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := parseAddr(args[0])
			if err != nil {
				return err
			}
			if err := theApp.registryEngine.UpdateName(addr, args[1]); err != nil {
				return err
			}
			fmt.Printf("updated %s name to %q\n", addr.String(), args[1])
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "show <address>",
		Short: "Show a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := parseAddr(args[0])
			if err != nil {
				return err
			}
			profile, ok, err := theApp.registryEngine.Profile(addr)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Printf("%s is not registered\n", addr.String())
				return nil
			}
			fmt.Printf("%s: name=%q registered=%v registrationTime=%d\n", addr.String(), profile.Name, profile.Registered, profile.RegistrationTime)
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "total",
		Short: "Show the total number of registered accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			total, err := theApp.registryEngine.TotalRegistered()
			if err != nil {
				return err
			}
			fmt.Println(total)
			return nil
		},
	})

	return root
}
