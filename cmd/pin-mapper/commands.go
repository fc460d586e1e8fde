package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"pin-mapper/internal/engine"
	"pin-mapper/internal/match"
	"pin-mapper/internal/pin"
	"pin-mapper/internal/store"
)

// parsePortRef splits "node.port". The port name is the part after the last dot.
func parsePortRef(ref string) (pin.PortKey, error) {
	i := strings.LastIndexByte(ref, '.')
	if i <= 0 || i == len(ref)-1 {
		return pin.PortKey{}, fmt.Errorf("%w: %q, expected node.port", pin.ErrInvalidPort, ref)
	}

	return pin.PortKey{NodeID: ref[:i], PortName: ref[i+1:]}, nil
}

func parsePinIndex(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid pin index %q", s)
	}

	return n, nil
}

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init [composite-id]",
		Short: "Create an empty composite (a random id is generated if none is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := uuid.NewString()
			if len(args) == 1 {
				id = args[0]
			}

			if _, err := a.store.Load(id); err == nil {
				return fmt.Errorf("%w: %s", engine.ErrCompositeExists, id)
			} else if !errors.Is(err, store.ErrNotFound) {
				return err
			}

			if err := a.manager().Create(id); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), id)

			return nil
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored composites",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ids, err := a.store.List()
			if err != nil {
				return err
			}

			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}

			return nil
		},
	}
}

func newShowCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:     "show <composite-id>",
		Aliases: []string{"inspect"},
		Short:   "Show the virtual pins of a composite",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.open(args[0])
			if err != nil {
				return err
			}

			if format != "" {
				def, err := m.Definition(args[0])
				if err != nil {
					return err
				}

				data, err := store.Encode(def, store.Format(format))
				if err != nil {
					return err
				}

				_, err = cmd.OutOrStdout().Write(data)

				return err
			}

			return printPins(cmd, m, args[0])
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "print the definition as json or yaml")

	return cmd
}

func printPins(cmd *cobra.Command, m *engine.Manager, compositeID string) error {
	pins, err := m.VirtualPins(compositeID)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PIN\tINDEX\tNAME\tTYPE\tMERGE\tPORTS")

	for _, vp := range pins {
		num, err := m.PinDisplayNumber(compositeID, vp.PinIndex)
		if err != nil {
			return err
		}

		merge := string(vp.MergeStrategy)
		if vp.IsInput {
			merge = "-"
		}

		ports := make([]string, 0, len(vp.MappedPorts))
		for _, p := range vp.MappedPorts {
			ports = append(ports, p.Key().String())
		}

		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\n",
			num, vp.PinIndex, vp.PinName, vp.PinType, merge, strings.Join(ports, ", "))
	}

	return tw.Flush()
}

func newCreateCmd(a *app) *cobra.Command {
	var spec pin.PinSpec

	cmd := &cobra.Command{
		Use:   "create <composite-id> <node.port>",
		Short: "Expose an internal port as a new virtual pin",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := parsePortRef(args[1])
			if err != nil {
				return err
			}

			m, err := a.open(args[0])
			if err != nil {
				return err
			}

			if spec.Name == "" {
				spec.Name = key.PortName
			}

			seed := pin.MappedPort{NodeID: key.NodeID, PortName: key.PortName, IsInput: spec.IsInput, IsFlow: spec.IsFlow}

			vp, err := m.CreateVirtualPin(args[0], spec, seed)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "created", describe(m, args[0], vp))

			return m.PersistErr()
		},
	}

	cmd.Flags().StringVar(&spec.Name, "name", "", "pin name (default: the port name)")
	cmd.Flags().StringVar(&spec.Type, "type", "", "pin type")
	cmd.Flags().StringVar(&spec.Description, "description", "", "pin description")
	cmd.Flags().BoolVar(&spec.IsInput, "input", false, "create an input pin")
	cmd.Flags().BoolVar(&spec.IsFlow, "flow", false, "create a flow pin")

	return cmd
}

func newAddCmd(a *app) *cobra.Command {
	var portType string

	cmd := &cobra.Command{
		Use:   "add <composite-id> <pin-index> <node.port>",
		Short: "Map another internal port onto a virtual pin",
		Long: `Map another internal port onto a virtual pin.

The port is assumed to have the direction and flow kind of the pin. With
strict_types enabled, --type must match the pin type when given.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parsePinIndex(args[1])
			if err != nil {
				return err
			}

			key, err := parsePortRef(args[2])
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

			if err := m.AddMapping(args[0], index, key.NodeID, key.PortName, vp.IsInput, portType, vp.IsFlow); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "mapped %s to %s\n", key, describe(m, args[0], vp))

			return m.PersistErr()
		},
	}

	cmd.Flags().StringVar(&portType, "type", "", "type of the port")

	return cmd
}

func newRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <composite-id> <pin-index> <node.port>",
		Short: "Remove a port from a virtual pin; the pin is deleted with its last port",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parsePinIndex(args[1])
			if err != nil {
				return err
			}

			key, err := parsePortRef(args[2])
			if err != nil {
				return err
			}

			m, err := a.open(args[0])
			if err != nil {
				return err
			}

			r, err := m.RemoveMapping(args[0], index, key.NodeID, key.PortName)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "unmapped %s from %s\n", key, r.Pin.Label())

			if r.PinDeleted {
				fmt.Fprintf(out, "deleted %s %q: no ports left\n", r.Pin.Label(), r.Pin.PinName)
			}

			return m.PersistErr()
		},
	}
}

func newStrategyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "strategy <composite-id> <pin-index> <last|first|array>",
		Short: "Set the merge strategy of an output pin",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parsePinIndex(args[1])
			if err != nil {
				return err
			}

			strategy, err := pin.ParseMergeStrategy(args[2])
			if err != nil {
				return err
			}

			m, err := a.open(args[0])
			if err != nil {
				return err
			}

			if err := m.SetMergeStrategy(args[0], index, strategy); err != nil {
				return err
			}

			vp, err := m.VirtualPin(args[0], index)
			if err != nil {
				return err
			}

			if vp.IsInput {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s is an input pin, its merge strategy is not used\n", vp.Label())
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s merges with %s\n", describe(m, args[0], vp), strategy)

			return m.PersistErr()
		},
	}
}

func newRenameCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <composite-id> <pin-index> <name>",
		Short: "Rename a virtual pin",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parsePinIndex(args[1])
			if err != nil {
				return err
			}

			m, err := a.open(args[0])
			if err != nil {
				return err
			}

			if err := m.RenameVirtualPin(args[0], index, args[2]); err != nil {
				return err
			}

			return m.PersistErr()
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <composite-id>",
		Short: "Delete a stored composite",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.store.Delete(args[0])
		},
	}
}

func newSuggestCmd(a *app) *cobra.Command {
	var (
		port match.Port
		top  int
	)

	cmd := &cobra.Command{
		Use:   "suggest <composite-id> <node.port>",
		Short: "Rank the virtual pins an unmapped port could join",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := parsePortRef(args[1])
			if err != nil {
				return err
			}

			m, err := a.open(args[0])
			if err != nil {
				return err
			}

			port.Name = key.PortName

			candidates, err := m.SuggestVirtualPins(args[0], key.NodeID, port)
			if err != nil {
				return err
			}

			candidates = candidates.AboveThreshold(match.DefaultMinScore).Top(top)
			if len(candidates) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "no virtual pin fits %s\n", key)
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PIN\tNAME\tTYPE\tSCORE\tTYPES")

			for _, cand := range candidates {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%.2f\t%s\n",
					cand.Pin.PinIndex, cand.Pin.PinName, cand.Pin.PinType, cand.Score, cand.TypeCompat)
			}

			if candidates.IsAmbiguous(match.DefaultAmbiguityThreshold) {
				fmt.Fprintln(tw, "(ambiguous: the top suggestions score alike)")
			}

			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&port.Type, "type", "", "type of the port")
	cmd.Flags().BoolVar(&port.IsInput, "input", false, "the port is an input")
	cmd.Flags().BoolVar(&port.IsFlow, "flow", false, "the port is a flow port")
	cmd.Flags().IntVarP(&top, "top", "n", 3, "number of suggestions")

	return cmd
}
