package app

import (
	"fmt"
	"runtime"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/agentstation/tftmeta"
	"github.com/agentstation/tftmeta/internal/cmd/output"
	"github.com/agentstation/tftmeta/pkg/errors"
	"github.com/agentstation/tftmeta/pkg/thresholds"
)

// format returns the validated output format, detecting it when unset.
func (a *App) format() (output.Format, error) {
	f, err := output.ParseFormat(a.config.Output)
	if err != nil {
		return "", errors.NewValidationError("output", a.config.Output, err.Error())
	}
	return output.DetectFormat(string(f)), nil
}

// NewResolveCommand builds a snapshot and prints a summary, or the whole
// snapshot as JSON or YAML.
func (a *App) NewResolveCommand() *cobra.Command {
	var (
		assetSource string
		patch       string
		refresh     bool
	)
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Build and print a reconciled snapshot",
		Example: `  tftmeta resolve
  tftmeta resolve --asset-source B -o yaml
  tftmeta resolve --patch 14.1.1 -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := a.format()
			if err != nil {
				return err
			}
			client, err := a.Client()
			if err != nil {
				return err
			}
			ctx := a.Context(cmd.Context())

			opts := tftmeta.ResolveOptions{AssetSource: a.assetSource(assetSource), Version: patch}
			if refresh {
				if err := client.Invalidate(opts); err != nil {
					return err
				}
			}
			snap, err := client.Resolve(ctx, opts)
			if err != nil {
				return err
			}

			if format == output.FormatTable {
				return output.NewFormatter(format).Format(cmd.OutOrStdout(), output.SnapshotTables(snap))
			}
			return output.NewFormatter(format).Format(cmd.OutOrStdout(), snap)
		},
	}
	cmd.Flags().StringVar(&assetSource, "asset-source", "", `icon provider: "A" (Data Dragon) or "B" (Community Dragon)`)
	cmd.Flags().StringVar(&patch, "patch", "", "pin a Data Dragon version instead of the newest of the current set")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore any cached snapshot")
	return cmd
}

// NewVersionsCommand prints the resolved version and the version index.
func (a *App) NewVersionsCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "versions",
		Short: "Show the version index and the version the current set resolves to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := a.format()
			if err != nil {
				return err
			}
			client, err := a.Client()
			if err != nil {
				return err
			}
			res, err := client.Versions(a.Context(cmd.Context()))
			if err != nil {
				return err
			}

			if format == output.FormatTable {
				return output.NewFormatter(format).Format(cmd.OutOrStdout(), output.VersionsTable(res, limit))
			}
			if limit > 0 && len(res.Versions) > limit {
				res.Versions = res.Versions[:limit]
			}
			return output.NewFormatter(format).Format(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum versions to list (0 for all)")
	return cmd
}

// traitResult is the machine-readable trait command output.
type traitResult struct {
	Trait      string                `json:"trait" yaml:"trait"`
	Name       string                `json:"name,omitempty" yaml:"name,omitempty"`
	UnitCount  int                   `json:"unit_count" yaml:"unit_count"`
	Activation thresholds.Activation `json:"activation" yaml:"activation"`
}

// NewTraitCommand reports the style a trait reaches at a unit count.
func (a *App) NewTraitCommand() *cobra.Command {
	var assetSource string
	cmd := &cobra.Command{
		Use:     "trait NAME COUNT",
		Short:   "Show which breakpoint a trait reaches with COUNT units",
		Example: `  tftmeta trait TFT14_Arcana 4`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := strconv.Atoi(args[1])
			if err != nil || count < 0 {
				return errors.NewValidationError("count", args[1], "must be a non-negative integer")
			}
			format, err := a.format()
			if err != nil {
				return err
			}
			client, err := a.Client()
			if err != nil {
				return err
			}

			snap, err := client.Resolve(a.Context(cmd.Context()), tftmeta.ResolveOptions{AssetSource: a.assetSource(assetSource)})
			if err != nil {
				return err
			}
			act := client.ActiveTraitStyle(args[0], count, snap)
			effects, _ := snap.Thresholds(args[0])

			name := ""
			if trait, ok := snap.Trait(args[0]); ok {
				name = trait.DisplayName
			}

			w := cmd.OutOrStdout()
			if format != output.FormatTable {
				return output.NewFormatter(format).Format(w, traitResult{
					Trait: args[0], Name: name, UnitCount: count, Activation: act,
				})
			}

			if name == "" {
				fmt.Fprintf(w, "%s: unknown trait, inactive\n", args[0])
				return nil
			}
			fmt.Fprintf(w, "%s with %d units: %s", name, count, act.Style)
			if act.NextThreshold != nil {
				fmt.Fprintf(w, " (next: %s at %d)", *act.NextStyle, *act.NextThreshold)
			}
			fmt.Fprintln(w)
			return output.NewFormatter(format).Format(w, output.TraitTable(effects, act))
		},
	}
	cmd.Flags().StringVar(&assetSource, "asset-source", "", `icon provider: "A" or "B"`)
	return cmd
}

// NewVersionCommand prints build information.
func (a *App) NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "tftmeta version %s\n", a.version)
			fmt.Fprintf(w, "commit: %s\n", a.commit)
			fmt.Fprintf(w, "built: %s\n", a.date)
			fmt.Fprintf(w, "built by: %s\n", a.builtBy)
			fmt.Fprintf(w, "go version: %s\n", runtime.Version())
			fmt.Fprintf(w, "platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

// assetSource prefers the flag, then configuration.
func (a *App) assetSource(flag string) string {
	if flag != "" {
		return flag
	}
	return a.config.AssetSource
}
