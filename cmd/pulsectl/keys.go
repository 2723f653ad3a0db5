package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kiranshivaraju/studentpulse/internal/render"
	"github.com/kiranshivaraju/studentpulse/internal/service"
)

var warnColor = color.New(color.FgYellow, color.Bold)

func (a *app) keysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage API keys (requires DATABASE_URL)",
	}
	cmd.AddCommand(a.keysCreateCmd(), a.keysListCmd(), a.keysRevokeCmd())
	return cmd
}

func (a *app) keysCreateCmd() *cobra.Command {
	var (
		name   string
		scopes []string
	)
	cmd := &cobra.Command{
		Use:     "create",
		Short:   "Create an API key and print it once",
		Example: "  pulsectl keys create --name dashboard\n  pulsectl keys create --name ops --scopes read,admin",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := a.connect(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer b.close()

			key, err := service.NewKeys(b.store).Create(cmd.Context(), name, scopes)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "id:     %s\nname:   %s\nscopes: %s\nkey:    %s\n",
				key.ID, key.Name, strings.Join(key.Scopes, ","), key.RawKey)
			_, err = warnColor.Fprintln(out, "Store this key now; it cannot be shown again.")
			return err
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "key name")
	cmd.Flags().StringSliceVar(&scopes, "scopes", []string{service.ScopeRead}, "comma separated scopes: read, admin")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func (a *app) keysListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List active API keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := a.connect(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer b.close()

			keys, err := service.NewKeys(b.store).List(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(keys))
			for _, k := range keys {
				lastUsed := "never"
				if k.LastUsedAt != nil {
					lastUsed = k.LastUsedAt.UTC().Format(time.RFC3339)
				}
				rows = append(rows, []string{
					k.ID.String(), k.Name, k.KeyPrefix, strings.Join(k.Scopes, ","),
					k.CreatedAt.UTC().Format(time.RFC3339), lastUsed,
				})
			}
			return render.Table(cmd.OutOrStdout(), fmt.Sprintf("API keys (%d)", len(keys)),
				[]string{"ID", "Name", "Prefix", "Scopes", "Created", "Last used"}, rows)
		},
	}
}

func (a *app) keysRevokeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revoke ID",
		Short: "Revoke an API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid key id %q: %w", args[0], err)
			}

			b, err := a.connect(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer b.close()

			if err := service.NewKeys(b.store).Revoke(cmd.Context(), id); err != nil {
				return err
			}
			a.logger.Info("api key revoked", "key_id", id)
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "revoked %s\n", id)
			return err
		},
	}
}
