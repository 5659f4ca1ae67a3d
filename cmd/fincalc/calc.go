package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/rgehrsitz/fincalc/internal/calculator"
	"github.com/rgehrsitz/fincalc/internal/config"
	"github.com/rgehrsitz/fincalc/internal/output"
	"github.com/spf13/cobra"
)

func listCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available calculators",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := calculator.NewRegistry(calculator.Deps{})
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, c := range registry.Calculators() {
				fmt.Fprintf(w, "%s\t%s\n", c.Name(), c.Description())
				if !verbose {
					continue
				}
				for _, p := range c.Params() {
					def := p.Default
					if def == "" && p.Optional {
						def = "(stored rate)"
					}
					fmt.Fprintf(w, "  --param %s=\t%s [%s]\n", p.Name, p.Description, def)
				}
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show parameters and defaults")
	return cmd
}

func calcCmd(g *globalFlags) *cobra.Command {
	var (
		params []string
		format string
	)
	cmd := &cobra.Command{
		Use:   "calc <name[:k=v,...]>",
		Short: "Run one calculator",
		Long: `Run one calculator. Parameters may follow the name ("emi:principal=500000,rate=9.5")
or be given with repeated --param flags. Omitted parameters use their defaults or stored rates.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter, err := output.NewResultFormatter(format)
			if err != nil {
				return err
			}
			a, err := g.newApp(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			name, p, err := a.registry.ParseParamSpec(args[0])
			if err != nil {
				return err
			}
			for _, pair := range params {
				if err := p.Set(pair); err != nil {
					return err
				}
			}

			result, err := a.registry.Run(cmd.Context(), name, p)
			if err != nil {
				return err
			}
			return writeResult(cmd.OutOrStdout(), formatter, result)
		},
	}
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "Parameter as key=value (repeatable)")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format ("+strings.Join(output.Formats, ", ")+")")
	return cmd
}

func batchCmd(g *globalFlags) *cobra.Command {
	var (
		format   string
		failFast bool
	)
	cmd := &cobra.Command{
		Use:   "batch <file.yaml>",
		Short: "Run a list of calculator invocations from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter, err := output.NewResultFormatter(format)
			if err != nil {
				return err
			}
			a, err := g.newApp(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			batch, err := config.NewInputParser(a.registry.List()...).LoadBatch(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			var errs []error
			for i, run := range batch.Runs {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintf(out, "== %s ==\n", run.Label())
				result, err := a.registry.Invoke(cmd.Context(), run)
				if err != nil {
					a.logger.WithField("run", run.Label()).Error(err)
					fmt.Fprintf(out, "error: %v\n", err)
					errs = append(errs, err)
					if failFast {
						break
					}
					continue
				}
				if err := writeResult(out, formatter, result); err != nil {
					return err
				}
			}
			if len(errs) > 0 {
				return fmt.Errorf("%d of %d runs failed: %w", len(errs), len(batch.Runs), errors.Join(errs...))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format ("+strings.Join(output.Formats, ", ")+")")
	cmd.Flags().BoolVar(&failFast, "fail-fast", false, "Stop at the first failing run")
	return cmd
}

func compareCmd(g *globalFlags) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "compare <file.yaml>",
		Short: "Compare a base run against alternatives on one metric",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.newApp(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			file, err := config.NewInputParser(a.registry.List()...).LoadComparison(args[0])
			if err != nil {
				return err
			}
			criterion, err := file.Criterion()
			if err != nil {
				return err
			}
			set, err := a.registry.Compare(cmd.Context(), file.Base, file.Alternatives, criterion)
			if err != nil {
				return err
			}
			data, err := output.FormatComparison(set, format)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format ("+strings.Join(output.Formats, ", ")+")")
	return cmd
}

func writeResult(w io.Writer, formatter output.ResultFormatter, result *calculator.Result) error {
	data, err := formatter.Format(result)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	if len(data) > 0 && data[len(data)-1] != '\n' {
		_, err = io.WriteString(w, "\n")
	}
	return err
}
