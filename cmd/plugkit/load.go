package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/lc/plugkit/internal/log"
	"github.com/lc/plugkit/internal/settings"
	"github.com/lc/plugkit/pkg/config"
	"github.com/lc/plugkit/pkg/version"
)

type loadFlags struct {
	defaults string
	target   string
	accept   []string
	min      string
	max      string
	auto     bool
}

func (f *loadFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.defaults, "defaults", "", "directory holding the default .yml/.yaml files")
	cmd.Flags().StringVar(&f.target, "target", "", "directory holding the live configuration files")
	cmd.Flags().StringArrayVar(&f.accept, "accept", nil, "accepted version (repeatable)")
	cmd.Flags().StringVar(&f.min, "min", "", "lowest accepted version")
	cmd.Flags().StringVar(&f.max, "max", "", "highest accepted version")
	cmd.Flags().BoolVar(&f.auto, "auto", false, "accept only the version found in each default file")
	_ = cmd.MarkFlagRequired("defaults")
	_ = cmd.MarkFlagRequired("target")
	cmd.MarkFlagsMutuallyExclusive("accept", "min")
	cmd.MarkFlagsMutuallyExclusive("accept", "max")
	cmd.MarkFlagsMutuallyExclusive("auto", "accept")
	cmd.MarkFlagsMutuallyExclusive("auto", "min")
	cmd.MarkFlagsMutuallyExclusive("auto", "max")
}

// rule returns the acceptance rule shared by every holder, or nil when no
// version flag was given.
func (f *loadFlags) rule() (version.Rule, error) {
	if len(f.accept) > 0 {
		vs := make([]version.Version, 0, len(f.accept))
		for _, a := range f.accept {
			v, err := version.Parse(a)
			if err != nil {
				return nil, fmt.Errorf("--accept: %w", err)
			}
			vs = append(vs, v)
		}
		return version.OneOf(vs...), nil
	}

	var lo, hi version.Version
	var err error
	if f.min != "" {
		if lo, err = version.Parse(f.min); err != nil {
			return nil, fmt.Errorf("--min: %w", err)
		}
	}
	if f.max != "" {
		if hi, err = version.Parse(f.max); err != nil {
			return nil, fmt.Errorf("--max: %w", err)
		}
	}
	switch {
	case !lo.IsZero() && !hi.IsZero():
		if hi.Less(lo) {
			return nil, fmt.Errorf("--max %s is below --min %s", hi, lo)
		}
		return version.Between(lo, hi), nil
	case !lo.IsZero():
		return version.AtLeast(lo), nil
	case !hi.IsZero():
		return version.AtMost(hi), nil
	}
	return nil, nil
}

// populate creates one holder per default file and registers it with loader.
func (f *loadFlags) populate(loader *config.Loader) error {
	shared, err := f.rule()
	if err != nil {
		return err
	}

	entries, err := os.ReadDir(f.defaults)
	if err != nil {
		return err
	}
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || (ext != ".yml" && ext != ".yaml") {
			continue
		}
		content, err := os.ReadFile(filepath.Join(f.defaults, e.Name()))
		if err != nil {
			return err
		}
		h, err := config.NewHolder(filepath.Join(f.target, e.Name()), string(content))
		if err != nil {
			return err
		}

		rule := shared
		if f.auto {
			v, err := versionOfDefaults(h)
			if err != nil {
				return err
			}
			rule = version.OneOf(v)
		}
		loader.Register(h, rule)
	}

	if loader.Len() == 0 {
		return fmt.Errorf("no .yml or .yaml files in %s", f.defaults)
	}
	return nil
}

// versionOfDefaults reads the Version of h's default content.
func versionOfDefaults(h *config.Holder) (version.Version, error) {
	v, err := config.VersionOf(h.Default())
	if err != nil {
		return version.Version{}, fmt.Errorf("--auto: defaults for %s: %w", filepath.Base(h.Path()), err)
	}
	return v, nil
}

func newLoadCmd(st *settings.Settings) *cobra.Command {
	var flags loadFlags
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Reconcile configuration files with their defaults once",
		Long: `Reconcile every default file in --defaults with its live copy in --target.
Missing files are created. When a version rule is given, files whose Version
is rejected, missing or unreadable are renamed to "outdated <name>" and
replaced with the defaults.`,
		Example: "plugkit load --defaults ./defaults --target ./plugins/Shop --min 2.0",
		RunE: func(cmd *cobra.Command, _ []string) error {
			loader := config.NewLoader(st.LoaderOptions()...)
			if err := flags.populate(loader); err != nil {
				return err
			}
			report := loader.LoadAll()
			printReport(cmd.OutOrStdout(), report)
			return report.Err()
		},
	}
	flags.register(cmd)
	return cmd
}

func newWatchCmd(st *settings.Settings) *cobra.Command {
	var (
		flags    loadFlags
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:     "watch",
		Short:   "Reconcile configuration files on an interval",
		Long:    `Like load, but repeats every --interval until interrupted. SIGHUP triggers an immediate run.`,
		Example: "plugkit watch --defaults ./defaults --target ./plugins/Shop --auto --interval 1m",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if interval < time.Second {
				return errors.New("--interval must be at least 1s")
			}
			loader := config.NewLoader(st.LoaderOptions()...)
			if err := flags.populate(loader); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			r := config.NewReloader(loader, interval, func(rep *config.Report) {
				printReport(out, rep)
			})

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			r.Run(ctx)
			r.Trigger()

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
			defer signal.Stop(sig)

			for s := range sig {
				if s == syscall.SIGHUP {
					r.Trigger()
					continue
				}
				log.Info("shutting down…")
				break
			}
			cancel()
			r.Close()
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().DurationVar(&interval, "interval", st.Watch.Interval, "time between runs")
	return cmd
}

func printReport(w io.Writer, report *config.Report) {
	outcomes := report.Sorted()
	if len(outcomes) == 0 {
		color.New(color.FgYellow).Fprintln(w, "No configuration files registered.")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"File", "State", "Version", "Detail"})
	table.SetHeaderColor(
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgHiCyanColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgHiCyanColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgHiCyanColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgHiCyanColor},
	)
	table.SetBorder(false)
	table.SetAutoWrapText(false)

	for _, o := range outcomes {
		ver := "-"
		if v, err := o.Holder.Version(); err == nil {
			ver = v.String()
		}
		detail := ""
		switch {
		case o.Err != nil:
			detail = o.Err.Error()
		case o.Archive != "":
			detail = "archived to " + filepath.Base(o.Archive)
		}
		table.Rich(
			[]string{filepath.Base(o.Holder.Path()), o.State.String(), ver, detail},
			[]tablewriter.Colors{{tablewriter.FgHiWhiteColor}, stateColor(o.State), {}, {}},
		)
	}

	color.New(color.Bold).Fprintf(w, "RUN %s (%s)\n", report.RunID, report.Duration.Round(time.Millisecond))
	table.Render()
}

func stateColor(s config.State) tablewriter.Colors {
	switch s {
	case config.StateFresh:
		return tablewriter.Colors{tablewriter.FgCyanColor}
	case config.StateLoaded:
		return tablewriter.Colors{tablewriter.FgGreenColor}
	case config.StateMigrated:
		return tablewriter.Colors{tablewriter.Bold, tablewriter.FgYellowColor}
	default:
		return tablewriter.Colors{tablewriter.Bold, tablewriter.FgRedColor}
	}
}
