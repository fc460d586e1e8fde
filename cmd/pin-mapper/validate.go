package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"pin-mapper/internal/diagnostic"
	"pin-mapper/internal/pin"
	"pin-mapper/internal/store"
)

var errInvalidFiles = errors.New("invalid composite files")

// fileReport is the validation outcome of one definition file.
type fileReport struct {
	path  string
	diags *diagnostic.Diagnostics
	err   error
}

func (r fileReport) failed() bool {
	return r.err != nil || r.diags.HasErrors()
}

func validateFile(path string) fileReport {
	def, err := store.LoadFile(path)
	if err != nil {
		return fileReport{path: path, err: err}
	}

	return fileReport{path: path, diags: pin.ValidateDefinition(def)}
}

func printReport(w io.Writer, r fileReport) {
	switch {
	case r.err != nil:
		fmt.Fprintf(w, "%s: %v\n", r.path, r.err)
		return
	case r.diags.HasErrors():
		fmt.Fprintf(w, "%s: invalid\n", r.path)
	default:
		fmt.Fprintf(w, "%s: ok\n", r.path)
	}

	for _, d := range r.diags.Errors {
		fmt.Fprintf(w, "  error: %s\n", d)
	}

	for _, d := range r.diags.Warnings {
		fmt.Fprintf(w, "  warning: %s\n", d)
	}
}

func newValidateCmd(a *app) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "validate <file>...",
		Short: "Validate composite definition files (.json, .yaml)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if watch {
				if len(args) != 1 {
					return errors.New("--watch takes exactly one file")
				}

				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()

				return a.watch(ctx, cmd, args[0])
			}

			return a.validateAll(cmd.Context(), cmd.OutOrStdout(), args)
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "re-validate the file whenever it changes")

	return cmd
}

// validateAll validates the files concurrently and prints the reports in
// argument order.
func (a *app) validateAll(ctx context.Context, w io.Writer, paths []string) error {
	reports := make([]fileReport, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			reports[i] = validateFile(path)

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	failed := 0

	for _, r := range reports {
		printReport(w, r)

		if r.failed() {
			failed++
		}
	}

	a.logger.Debug("validation finished", zap.Int("files", len(paths)), zap.Int("failed", failed))

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", errInvalidFiles, failed, len(paths))
	}

	return nil
}

func (a *app) watch(ctx context.Context, cmd *cobra.Command, path string) error {
	out := cmd.OutOrStdout()

	printReport(out, validateFile(path))

	w, err := store.NewWatcher(path, func(def pin.CompositeDefinition, err error) {
		if err != nil {
			printReport(out, fileReport{path: path, err: err})
			return
		}

		printReport(out, fileReport{path: path, diags: pin.ValidateDefinition(def)})
	}, a.logger)
	if err != nil {
		return err
	}

	if err := w.Start(ctx); err != nil {
		return errors.Join(err, w.Stop())
	}

	<-ctx.Done()

	return w.Stop()
}

func newDumpCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dump <composite-id>",
		Short: "Dump the stored definition and its diagnostics for debugging",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := a.store.Load(args[0])
			if err != nil {
				return err
			}

			cfg := spew.ConfigState{Indent: "  ", DisableMethods: true, SortKeys: true}
			cfg.Fdump(cmd.OutOrStdout(), def, pin.ValidateDefinition(def))

			return nil
		},
	}
}
