package cmd

import (
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/orestes-garcia-martinez/careerclaw/internal/logger"
	"github.com/orestes-garcia-martinez/careerclaw/internal/tracking"
)

var trackCmd = &cobra.Command{
	Use:   "track [job-id status]",
	Short: "List tracked jobs, or move one to saved, applied, interview or rejected",
	Args: func(_ *cobra.Command, args []string) error {
		if len(args) != 0 && len(args) != 2 {
			return fmt.Errorf("expected no arguments or <job-id> <status>, got %d arguments", len(args))
		}
		return nil
	},
	Run: func(_ *cobra.Command, args []string) {
		track(args)
	},
}

func init() {
	rootCmd.AddCommand(trackCmd)
}

func track(args []string) {
	zlog, err := logger.New(viper.GetBool("json-log"), viper.GetBool("debug"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "creating a logger: %s\n", err)
		os.Exit(1)
	}

	store := tracking.New(viper.GetString("dir"))

	if len(args) == 0 {
		if err := listTracked(os.Stdout, store); err != nil {
			zlog.Fatal("listing tracked jobs", zap.Error(err))
		}
		return
	}

	entry, err := setStatus(store, args[0], args[1])
	if err != nil {
		zlog.Fatal("updating tracked job", zap.String("job_id", args[0]), zap.Error(err))
	}
	zlog.Info("updated tracked job",
		logger.JobFields(entry.JobID, entry.Title,
			zap.String("status", string(entry.Status)),
			zap.String("dir", store.Dir()),
		)...,
	)
}

func setStatus(store *tracking.Repository, id, raw string) (tracking.Entry, error) {
	status, err := tracking.ParseStatus(raw)
	if err != nil {
		return tracking.Entry{}, err
	}
	return store.SetStatus(id, status)
}

// listTracked prints entries, most recently updated first.
func listTracked(w io.Writer, store *tracking.Repository) error {
	entries, err := store.Load()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		_, err := fmt.Fprintf(w, "no tracked jobs in %s\n", store.Dir())
		return err
	}

	list := make([]tracking.Entry, 0, len(entries))
	for _, e := range entries {
		list = append(list, e)
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].UpdatedAt.Equal(list[j].UpdatedAt) {
			return list[i].UpdatedAt.After(list[j].UpdatedAt)
		}
		return list[i].JobID < list[j].JobID
	})

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "JOB ID\tSTATUS\tUPDATED\tTITLE\tCOMPANY")
	for _, e := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.JobID, e.Status, e.UpdatedAt.Format(time.DateOnly), e.Title, e.Company)
	}
	return tw.Flush()
}
