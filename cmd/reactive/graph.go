package main

import (
	"encoding/json"
	"fmt"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/spf13/cobra"

	"github.com/vango-dev/reactive/internal/errors"
	"github.com/vango-dev/reactive/internal/scenario"
	"github.com/vango-dev/reactive/pkg/devtools"
	"github.com/vango-dev/reactive/pkg/reactive"
)

func graphCmd(opts *options) *cobra.Command {
	var (
		format string
		color  bool
		style  string
		steps  bool
	)

	cmd := &cobra.Command{
		Use:   "graph [scenario]",
		Short: "Print the dependency graph of a scenario",
		Long: `Build a scenario and print a snapshot of its dependency graph.

Each Computed appears twice: its source node, which readers subscribe to,
and its invalidator, which subscribes to what the derive function read.

Examples:
  reactive graph chain
  reactive graph dynamic --steps
  reactive graph cascade --format=json --color`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			log := logger(cfg, cmd.ErrOrStderr())

			name := "chain"
			if len(args) == 1 {
				name = args[0]
			}
			s, err := scenario.Lookup(name)
			if err != nil {
				return err
			}

			rt := reactive.NewRuntime(reactive.WithLogger(log.With("scenario", s.Name)))
			inst := s.Start(rt, nil)
			if steps {
				inst.Run()
			}
			g := rt.Snapshot()

			out := cmd.OutOrStdout()
			switch format {
			case "text":
				return devtools.RenderText(out, g)
			case "json":
				data, err := json.MarshalIndent(g, "", "  ")
				if err != nil {
					return err
				}
				if color {
					return quick.Highlight(out, string(data)+"\n", "json", "terminal256", style)
				}
				_, err = fmt.Fprintln(out, string(data))
				return err
			default:
				return errors.New("C003").WithDetailf("--format %q must be text or json", format)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&color, "color", false, "Syntax-highlight JSON output")
	cmd.Flags().StringVar(&style, "style", "monokai", "Highlight style for --color")
	cmd.Flags().BoolVar(&steps, "steps", false, "Run every scenario step before the snapshot")

	return cmd
}
