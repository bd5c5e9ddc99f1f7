package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/planloom/planloom/internal/graph"
	"github.com/planloom/planloom/internal/loader"
	"github.com/planloom/planloom/internal/render"
	"github.com/planloom/planloom/internal/schedule"
	"github.com/planloom/planloom/internal/ui"
)

var (
	flagStart  string
	flagPolicy string
	flagFormat string
	flagOutput string
	flagCfg    string
	flagRender bool
	flagFrom   string
	flagTo     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "planloom",
		Short: "Compute calendar-accurate project schedules from declarative definitions",
		Long: `Planloom reads a project definition (team, tasks, estimates, dependencies,
assignments), computes a resource- and calendar-aware schedule with its
critical path, and renders it as a table, a PlantUML Gantt script, or JSON.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(planCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(holidaysCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", ui.BoldRed("error:"), err)
		os.Exit(1)
	}
}

func planCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan PROJECT_FILE",
		Short: "Compute and render the project schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sched, err := computeSchedule(args[0])
			if err != nil {
				return err
			}

			out := os.Stdout
			if flagOutput != "" {
				f, err := os.Create(flagOutput)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}

			switch flagFormat {
			case "table":
				render.PrintTable(out, sched)
				return nil
			case "json":
				return render.WriteJSON(out, sched)
			case "plantuml":
				cfg := loader.DefaultConfig()
				if flagCfg != "" {
					cfg, err = loader.LoadConfig(flagCfg)
					if err != nil {
						return err
					}
				}
				script := render.Script(cfg, sched)
				if flagOutput == "" {
					fmt.Fprint(out, script)
					return nil
				}
				if _, err := out.WriteString(script); err != nil {
					return err
				}
				if flagRender {
					return render.Invoke(cfg.Backend.PlantUML, flagOutput)
				}
				return nil
			}
			return fmt.Errorf("unknown format %q (want table, plantuml or json)", flagFormat)
		},
	}
	cmd.Flags().StringVar(&flagStart, "start", "", "Override the project start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&flagPolicy, "policy", "all-together", "Multi-assignee progress policy (all-together, any-available)")
	cmd.Flags().StringVar(&flagFormat, "format", "table", "Output format (table, plantuml, json)")
	cmd.Flags().StringVar(&flagOutput, "out", "", "Write output to a file instead of stdout")
	cmd.Flags().StringVar(&flagCfg, "cfg", "", "Backend config TOML for the PlantUML renderer")
	cmd.Flags().BoolVar(&flagRender, "render", false, "Run the local plantuml command on the written script")
	return cmd
}

func computeSchedule(path string) (*schedule.Schedule, error) {
	proj, err := loader.LoadProject(path)
	if err != nil {
		return nil, err
	}
	opts := schedule.Options{}
	if opts.Progress, err = schedule.ParseProgress(flagPolicy); err != nil {
		return nil, err
	}
	if flagStart != "" {
		if opts.Start, err = loader.ParseDate(flagStart); err != nil {
			return nil, err
		}
	}
	return schedule.Compute(proj, opts)
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate PROJECT_FILE",
		Short: "Check a project definition without scheduling it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := loader.LoadProject(args[0])
			if err != nil {
				return err
			}
			if err := proj.Validate(); err != nil {
				return err
			}
			g, err := graph.Build(proj.Tasks)
			if err != nil {
				return err
			}
			fmt.Printf("%s %s: %d members, %d tasks, %d roots\n",
				ui.Green("ok"), filepath.Base(args[0]), len(proj.Members), g.TaskCount(), len(g.Roots))
			return nil
		},
	}
}

func holidaysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "holidays PROJECT_FILE MEMBER",
		Short: "List a member's effective non-working dates in a range",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := loader.LoadProject(args[0])
			if err != nil {
				return err
			}
			m, ok := proj.Member(args[1])
			if !ok {
				return fmt.Errorf("unknown member %q", args[1])
			}
			from, err := loader.ParseDate(flagFrom)
			if err != nil {
				return err
			}
			to, err := loader.ParseDate(flagTo)
			if err != nil {
				return err
			}
			cal := m.EffectiveCalendar()
			var days []string
			for _, d := range cal.NonWorkingBetween(from, to) {
				days = append(days, d.Format("2006-01-02"))
			}
			fmt.Printf("%s is off on %d days:\n%s\n", ui.Bold(m.Name), len(days), strings.Join(days, "\n"))
			return nil
		},
	}
	cmd.Flags().StringVar(&flagFrom, "from", "", "Range start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&flagTo, "to", "", "Range end (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
