package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vancomm/minesweeper-engine/internal/app"
	"github.com/vancomm/minesweeper-engine/internal/besttime"
	"github.com/vancomm/minesweeper-engine/internal/mines"
)

var deleteBoard string

var bestTimesCmd = &cobra.Command{
	Use:   "besttimes",
	Short: "List recorded best times of every board",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		store, pool, err := app.OpenStore(ctx, cfg, log)
		if err != nil {
			return err
		}
		if pool != nil {
			defer pool.Close()
		}

		if deleteBoard != "" {
			if err := store.Delete(ctx, deleteBoard); err != nil {
				return fmt.Errorf("unable to delete %s: %w", deleteBoard, err)
			}
			log.WithField("board", deleteBoard).Info("best time deleted")
			return nil
		}
		return listBestTimes(ctx, os.Stdout, store)
	},
}

func init() {
	bestTimesCmd.Flags().StringVar(&deleteBoard, "delete", "", "forget the best time of a board, e.g. 10x10:10")
}

func listBestTimes(ctx context.Context, w io.Writer, store besttime.Records) error {
	times, err := store.List(ctx)
	if err != nil {
		return err
	}
	if len(times) == 0 {
		fmt.Fprintln(w, "no games won yet")
		return nil
	}

	boards := make([]string, 0, len(times))
	for board := range times {
		boards = append(boards, board)
	}
	slices.Sort(boards)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BOARD\tSIZE\tMINES\tBEST")
	for _, board := range boards {
		size, mineCount := "?", "?"
		if params, err := mines.ParseKey(board); err == nil {
			size = fmt.Sprintf("%dx%d", params.Size, params.Size)
			mineCount = fmt.Sprint(params.MineCount)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", board, size, mineCount, formatBest(times[board], true))
	}
	return tw.Flush()
}
