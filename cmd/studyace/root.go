package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "studyace",
		Short:         "Flashcard practice in the terminal",
		Long:          "studyace practises JSON and CSV flashcard decks with the same grading, points and daily challenge rules as the Study Ace server.",
		SilenceUsage: true,
	}
	root.PersistentFlags().Bool("verbose", false, "write debug logs to stderr")

	root.AddCommand(newPlayCommand())
	root.AddCommand(newGradeCommand())
	root.AddCommand(newLevelsCommand())
	return root
}
