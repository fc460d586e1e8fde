package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pin-mapper/internal/merge"
	"pin-mapper/internal/pin"
)

func newEvalCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "eval <composite-id> <pin-index> <node.port=value>...",
		Short: "Evaluate a virtual pin against sample port values",
		Long: `Evaluate a virtual pin against sample port values.

For an output pin every argument is an emission of one internal port, in
production order; the pin's merge strategy picks the observed value. Join
several assignments with "+" to emit them simultaneously, e.g.
"a.Out=1+b.Out=2".

For an input pin the single argument is the value arriving at the pin; the
command prints the value every mapped port receives.`,
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parsePinIndex(args[1])
			if err != nil {
				return err
			}

			m, err := a.open(args[0])
			if err != nil {
				return err
			}

			vp, err := m.VirtualPin(args[0], index)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			if vp.IsInput {
				if len(args) != 3 {
					return fmt.Errorf("%s is an input pin: expected a single value", vp.Label())
				}

				assignments, err := merge.Broadcast(vp, args[2])
				if err != nil {
					return err
				}

				for _, as := range assignments {
					fmt.Fprintf(out, "%s = %v\n", as.Port, as.Value)
				}

				return nil
			}

			var tick merge.Tick

			for _, arg := range args[2:] {
				values, err := parseEmissions(arg)
				if err != nil {
					return err
				}

				tick.EmitTogether(values)
			}

			res, err := merge.Evaluate(vp, tick.Emissions())
			if err != nil {
				return err
			}

			if !res.Present {
				fmt.Fprintf(out, "%s: no value (%s)\n", vp.Label(), vp.EffectiveMergeStrategy())
				return nil
			}

			fmt.Fprintf(out, "%s = %v (%s from %s)\n",
				vp.Label(), res.Value, vp.EffectiveMergeStrategy(), joinKeys(res.Sources))

			return nil
		},
	}
}

// parseEmissions parses "node.port=value[+node.port=value...]".
func parseEmissions(arg string) (map[pin.PortKey]any, error) {
	values := make(map[pin.PortKey]any)

	for _, part := range strings.Split(arg, "+") {
		ref, value, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("invalid emission %q, expected node.port=value", part)
		}

		key, err := parsePortRef(ref)
		if err != nil {
			return nil, err
		}

		values[key] = value
	}

	return values, nil
}

func joinKeys(keys []pin.PortKey) string {
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k.String())
	}

	return strings.Join(parts, ", ")
}
