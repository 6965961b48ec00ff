package main

import (
	"fmt"
	"strings"

	"github.com/HendryAvila/evermem-bridge/internal/evermem"
	"github.com/HendryAvila/evermem-bridge/internal/journal"
	"github.com/HendryAvila/evermem-bridge/internal/memory"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func (a *app) searchCmd() *cobra.Command {
	var (
		method string
		topK   int
		userID string
	)
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search memories",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.newClient(a.cfg).Search(cmd.Context(), evermem.SearchParams{
				Query:          args[0],
				RetrieveMethod: evermem.RetrieveMethod(method),
				TopK:           topK,
				UserID:         orDefault(userID, a.cfg.DefaultUserID),
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), memory.FormatReport(data))
			return nil
		},
	}
	cmd.Flags().StringVar(&method, "method", string(evermem.MethodKeyword), "Retrieval method (keyword|vector|hybrid)")
	cmd.Flags().IntVar(&topK, "top-k", 5, "Max results")
	cmd.Flags().StringVar(&userID, "user", "", "User ID (default: configured user)")
	return cmd
}

func (a *app) healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the EverMemOS connection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h := a.newClient(a.cfg).Health(cmd.Context())
			if !h.OK {
				fmt.Fprintf(cmd.ErrOrStderr(), "EverMemOS: unhealthy - %s\n", h.Error)
				return errReported
			}
			fmt.Fprintf(cmd.OutOrStdout(), "EverMemOS: healthy (%s)\n", h.Status)
			return nil
		},
	}
}

func (a *app) statsCmd() *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show record counts per memory type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := a.newClient(a.cfg)
			user := orDefault(userID, a.cfg.DefaultUserID)

			totals := make([]int64, len(evermem.MemoryTypes))
			g, ctx := errgroup.WithContext(cmd.Context())
			for i, mt := range evermem.MemoryTypes {
				g.Go(func() error {
					data, err := client.Fetch(ctx, evermem.FetchParams{MemoryType: mt, UserID: user, Limit: 1})
					if err != nil {
						return err
					}
					totals[i] = memory.TotalCount(data)
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			for i, mt := range evermem.MemoryTypes {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s: %d records\n", mt, totals[i])
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "User ID (default: configured user)")
	return cmd
}

func (a *app) journalCmd() *cobra.Command {
	var (
		limit  int
		userID string
	)
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "List recent auto-capture attempts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.JournalPath == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "Capture journal is disabled.")
				return nil
			}
			j, err := journal.New(a.cfg.JournalPath)
			if err != nil {
				return err
			}
			defer func() {
				if err := j.Close(); err != nil {
					a.logger.Warn("capture journal close", zap.Error(err))
				}
			}()

			stats, err := j.Stats(cmd.Context(), userID)
			if err != nil {
				return err
			}
			entries, err := j.Recent(cmd.Context(), userID, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Captures: %d stored, %d failed\n", stats.Stored, stats.Failed)
			for _, e := range entries {
				mark := "ok"
				if !e.Stored {
					mark = "FAILED: " + e.Error
				}
				fmt.Fprintf(out, "  %s  %s  %s  [%s]\n", e.RecordedAt, e.UserID, oneLine(e.Content, 60), mark)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Max entries")
	cmd.Flags().StringVar(&userID, "user", "", "Only this user (default: all users)")
	return cmd
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// oneLine flattens s and cuts it to n runes.
func oneLine(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
