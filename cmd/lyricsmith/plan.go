package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/igolaizola/lyricsmith/internal/plan"
)

func newPlanCmd() *cobra.Command {
	var structure string
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Parse a structure expression and print the sections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := plan.Parse(structure)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i, s := range p {
				fmt.Fprintf(out, "%d. %-20s %s ... %s\n", i+1, s.Label(), s.OpenTag(), s.CloseTag())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&structure, "structure", "", "Structure expression")
	_ = cmd.MarkFlagRequired("structure")
	return cmd
}
