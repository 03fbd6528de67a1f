package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"dictation-trainer/internal/config"
	"dictation-trainer/internal/progress"
	"github.com/spf13/cobra"
)

// NewProgressCmd inspects and clears saved progress without starting the server.
func NewProgressCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Inspect or clear saved exercise progress",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List exercises with saved progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withProgressStore(cmd.Context(), *configPath, func(store *progress.Store) error {
				return listProgress(cmd.Context(), cmd.OutOrStdout(), store)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show <exercise-id>",
		Short: "Print the saved progress record of an exercise",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withProgressStore(cmd.Context(), *configPath, func(store *progress.Store) error {
				return showProgress(cmd.Context(), cmd.OutOrStdout(), store, args[0])
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear <exercise-id>",
		Short: "Delete the saved progress of an exercise",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withProgressStore(cmd.Context(), *configPath, func(store *progress.Store) error {
				store.Clear(cmd.Context(), args[0])
				fmt.Fprintf(cmd.OutOrStdout(), "cleared progress for %s\n", args[0])
				return nil
			})
		},
	})
	return cmd
}

func withProgressStore(ctx context.Context, configPath string, fn func(*progress.Store) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := newLogger(os.Stderr, cfg)

	b, err := openBackends(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	backend, err := b.progressBackend(cfg)
	if err != nil {
		return err
	}
	return fn(progress.NewStore(backend, progress.WithLogger(logger)))
}

func listProgress(ctx context.Context, w io.Writer, store *progress.Store) error {
	ids := store.Saved(ctx)
	if len(ids) == 0 {
		fmt.Fprintln(w, "no saved progress")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "EXERCISE\tCOMPLETED\tACCURACY\tSAVED")
	for _, id := range ids {
		sum, ok := store.Summary(ctx, id)
		if !ok {
			continue
		}
		fmt.Fprintf(tw, "%s\t%d/%d\t%d%%\t%s\n", id, sum.Completed, sum.Total, sum.Accuracy, sum.SavedAt.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

func showProgress(ctx context.Context, w io.Writer, store *progress.Store, exerciseID string) error {
	p, ok := store.Load(ctx, exerciseID)
	if !ok {
		return fmt.Errorf("no saved progress for %s", exerciseID)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(p)
}
