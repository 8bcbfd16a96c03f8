package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vango-dev/reactive/internal/scenario"
	"github.com/vango-dev/reactive/pkg/reactive"
)

func demoCmd(opts *options) *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "demo [scenario...]",
		Short: "Run demo scenarios",
		Long: `Run one or more demo scenarios and print every line their effects log.

With no arguments every scenario runs. Re-entrant runs that the runtime
skips are reported as R001 warnings on stderr.

Examples:
  reactive demo
  reactive demo chain cleanup
  reactive demo cascade --log-level=debug
  reactive demo --list`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if list {
				for _, s := range scenario.All() {
					fmt.Fprintf(out, "  %-10s %s\n", s.Name, s.Description)
				}
				return nil
			}

			cfg, err := opts.load()
			if err != nil {
				return err
			}
			log := logger(cfg, cmd.ErrOrStderr())

			scenarios, err := resolve(args)
			if err != nil {
				return err
			}
			for i, s := range scenarios {
				if i > 0 {
					fmt.Fprintln(out)
				}
				rt := reactive.NewRuntime(
					reactive.WithLogger(log.With("scenario", s.Name)),
					reactive.WithDebug(cfg.RuntimeDebug()),
				)
				s.Start(rt, out).Run()
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&list, "list", "l", false, "List available scenarios")

	return cmd
}

// resolve maps names to scenarios; no names means all of them.
func resolve(names []string) ([]*scenario.Scenario, error) {
	if len(names) == 0 {
		return scenario.All(), nil
	}
	list := make([]*scenario.Scenario, 0, len(names))
	for _, name := range names {
		s, err := scenario.Lookup(name)
		if err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, nil
}
