package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"steamdrop/internal/steam"
)

func newAccountCommand(ctx *commandContext) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "account",
		Short: "Show the Steam account signed in most recently",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !all {
				account, err := steam.CurrentAccount(cfg.Steam.Path)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s (%s)\n", account.DisplayName(), account.SteamID)
				return nil
			}

			accounts, err := steam.Accounts(cfg.Steam.Path)
			if err != nil {
				return err
			}
			if len(accounts) == 0 {
				fmt.Fprintln(out, "No Steam accounts found")
				return nil
			}
			rows := make([][]string, 0, len(accounts))
			for _, a := range accounts {
				rows = append(rows, []string{a.SteamID, a.AccountName, a.PersonaName, yesNo(a.MostRecent)})
			}
			fmt.Fprintln(out, renderTable(out, []string{"Steam ID", "Account", "Persona", "Most recent"}, rows, nil))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "List every account in loginusers.vdf")
	return cmd
}
