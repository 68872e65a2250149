package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/phrazzld/studyace/internal/domain/similarity"
)

func newGradeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "grade <answer> <reference>",
		Short: "Show how a typed answer would be graded",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			printGrading(cmd.OutOrStdout(), similarity.Grade(args[0], args[1]))
			return nil
		},
	}
}

func printGrading(w io.Writer, g similarity.Grading) {
	fmt.Fprintf(w, "%s  ratio %.2f\n", verdictLabel(g.Verdict), g.Ratio)
	if g.Hint != "" {
		fmt.Fprintln(w, dimStyle.Render("hint: "+g.Hint))
	}
}

func verdictLabel(v similarity.Verdict) string {
	switch v {
	case similarity.Correct:
		return correctStyle.Render("correct")
	case similarity.Partial:
		return partialStyle.Render("partial")
	default:
		return wrongStyle.Render("wrong")
	}
}
