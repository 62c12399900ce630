package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/igolaizola/lyricsmith/internal/filter"
	"github.com/igolaizola/lyricsmith/internal/scoring"
)

func newCleanCmd() *cobra.Command {
	var (
		contextFile string
		asJSON      bool
	)
	cmd := &cobra.Command{
		Use:   "clean [file]",
		Short: "Filter one raw section and print its score",
		Long: `Runs the line filter and tag repair over raw model output read from a
file or stdin, then prints the cleaned section followed by its score
breakdown. With --context the score penalizes lines copied from the
given previous sections.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			fc, err := cfg.FilterConfig()
			if err != nil {
				return err
			}

			raw, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			prior := ""
			if contextFile != "" {
				data, err := os.ReadFile(contextFile)
				if err != nil {
					return fmt.Errorf("read context: %w", err)
				}
				prior = string(data)
			}

			cleaned := filter.CleanSection(raw, fc)
			q := scoring.NewScorer(fc.Classifier).AssessInContext(cleaned, prior)

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					Cleaned string          `json:"cleaned"`
					Quality scoring.Quality `json:"quality"`
				}{cleaned, q})
			}
			fmt.Fprintln(out, cleaned)
			fmt.Fprintln(out)
			writeQuality(out, q)
			return nil
		},
	}
	cmd.Flags().StringVar(&contextFile, "context", "", "File with previous sections to score against")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}

func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}

func writeQuality(w io.Writer, q scoring.Quality) {
	fmt.Fprintf(w, "score: %.4f\n", q.Score)
	fmt.Fprintf(w, "lines: %d\n", q.LineCount)
	fmt.Fprintf(w, "native ratio: %.4f\n", q.NativeRatio)
	fmt.Fprintf(w, "avg words: %.2f\n", q.AvgWords)
	fmt.Fprintf(w, "unique lines: %.4f\n", q.UniqueLineRatio)
	fmt.Fprintf(w, "max repeat: %d\n", q.MaxRepeat)
	fmt.Fprintf(w, "4-gram repetition: %.4f\n", q.GramRepetition)
	if q.LineOverlap > 0 || q.GramOverlap > 0 {
		fmt.Fprintf(w, "context line overlap: %.4f\n", q.LineOverlap)
		fmt.Fprintf(w, "context 4-gram overlap: %.4f\n", q.GramOverlap)
	}
	if len(q.Reasons) > 0 {
		fmt.Fprintf(w, "reasons: %s\n", strings.Join(q.Reasons, "; "))
	}
}
