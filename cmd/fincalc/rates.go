package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rgehrsitz/fincalc/internal/rates"
	"github.com/rgehrsitz/fincalc/internal/server"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// errRateNotFound is returned by get and delete for unknown keys
var errRateNotFound = errors.New("rate not found")

func ratesCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rates",
		Short: "Manage the admin rate store",
	}
	cmd.AddCommand(
		ratesListCmd(g),
		ratesGetCmd(g),
		ratesSetCmd(g),
		ratesDeleteCmd(g),
		ratesImportCmd(g),
		ratesTokenCmd(g),
	)
	return cmd
}

func ratesListCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored rates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.newApp(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			entries, err := a.store.ListRates(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s%%\n", e.Key, e.Value.String())
			}
			return w.Flush()
		},
	}
}

func ratesGetCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print one stored rate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.newApp(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			v, ok, err := a.store.Rate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: %s", errRateNotFound, args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), v.String())
			return nil
		},
	}
}

func ratesSetCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <percent>",
		Short: "Store an annual rate in percent",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := decimal.NewFromString(args[1])
			if err != nil {
				return fmt.Errorf("invalid rate %q: %w", args[1], err)
			}
			if value.IsNegative() {
				return fmt.Errorf("rate must not be negative, got %s", args[1])
			}
			a, err := g.newApp(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.store.SetRate(cmd.Context(), args[0], value); err != nil {
				return err
			}
			a.logger.WithField("key", args[0]).Infof("rate set to %s", value)
			return nil
		},
	}
}

func ratesDeleteCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <key>",
		Short: "Remove a stored rate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.newApp(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ok, err := a.store.DeleteRate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: %s", errRateNotFound, args[0])
			}
			return nil
		},
	}
}

func ratesImportCmd(g *globalFlags) *cobra.Command {
	var (
		keyRateKey string
		margin     string
		dryRun     bool
	)
	cmd := &cobra.Command{
		Use:   "import <file.xml>",
		Short: "Import rates from an XML rate sheet or key-rate feed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := rates.DefaultImportOptions()
			if keyRateKey != "" {
				opts.KeyRateKey = keyRateKey
			}
			if margin != "" {
				m, err := decimal.NewFromString(margin)
				if err != nil {
					return fmt.Errorf("invalid margin %q: %w", margin, err)
				}
				opts.KeyRateMargin = m
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			entries, err := rates.ImportXML(f, opts)
			if err != nil {
				return fmt.Errorf("failed to import %s: %w", args[0], err)
			}

			out := cmd.OutOrStdout()
			if dryRun {
				for _, e := range entries {
					fmt.Fprintf(out, "%s\t%s\n", e.Key, e.Value.String())
				}
				return nil
			}

			a, err := g.newApp(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			for _, e := range entries {
				if err := a.store.SetRate(cmd.Context(), e.Key, e.Value); err != nil {
					return fmt.Errorf("failed to store %s: %w", e.Key, err)
				}
			}
			fmt.Fprintf(out, "imported %d rates\n", len(entries))
			return nil
		},
	}
	cmd.Flags().StringVar(&keyRateKey, "key", "", "Rate key for a key-rate feed (default loan_rate)")
	cmd.Flags().StringVar(&margin, "margin", "", "Margin in percent added to a key-rate feed")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the parsed rates without storing them")
	return cmd
}

func ratesTokenCmd(g *globalFlags) *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an admin token for the rate API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			if ttl == 0 {
				ttl = cfg.Auth.TokenTTL
			}
			token, err := server.IssueToken([]byte(cfg.Auth.JWTSecret), subject, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "admin", "Token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (default from config)")
	return cmd
}
