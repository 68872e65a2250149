package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/phrazzld/studyace/internal/domain/gamification"
)

func newLevelsCommand() *cobra.Command {
	var points int
	cmd := &cobra.Command{
		Use:   "levels",
		Short: "List the level tiers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if points < 0 {
				return fmt.Errorf("points cannot be negative: %d", points)
			}
			mark := cmd.Flags().Changed("points")
			printLevels(cmd.OutOrStdout(), points, mark)
			return nil
		},
	}
	cmd.Flags().IntVar(&points, "points", 0, "highlight the tier reached with this many points")
	return cmd
}

// printLevels writes one row per tier. With mark set, the tier reached by
// points is flagged and the distance to the next one is shown.
func printLevels(w io.Writer, points int, mark bool) {
	current := gamification.LevelFor(points)
	fmt.Fprintln(w, titleStyle.Render("Levels"))
	for _, l := range gamification.Levels {
		row := fmt.Sprintf("%10d  %s", l.MinPoints, l.Name)
		if mark && l == current {
			fmt.Fprintln(w, correctStyle.Render(row+"  <"))
			continue
		}
		fmt.Fprintln(w, row)
	}
	if !mark {
		return
	}
	if next, ok := gamification.NextLevel(points); ok {
		fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("%d points to %s", next.MinPoints-points, next.Name)))
	}
}
