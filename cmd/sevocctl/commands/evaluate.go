package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"sevoc/internal/domain"
)

var evaluateFilename string

var evaluateCmd = &cobra.Command{
	Use:   "evaluate [FILE]",
	Short: "Evaluate an audio file",
	Long: `Evaluate an audio file for synthetic voice.

Pass a local FILE to upload it, or --filename to evaluate a file that
already exists in the server directory. Exactly one must be given.

Examples:
  sevocctl evaluate ./clip.wav
  sevocctl evaluate --filename batch/clip.wav --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if (len(args) == 1) == (evaluateFilename != "") {
			return errors.New("provide either a local FILE or --filename, not both")
		}

		var (
			resp *domain.EvaluationResponse
			err  error
		)
		if len(args) == 1 {
			resp, err = newClient().EvaluateFile(cmd.Context(), args[0])
		} else {
			resp, err = newClient().EvaluateReference(cmd.Context(), evaluateFilename)
		}
		if err != nil {
			return err
		}

		if asJSON {
			return printJSON(cmd, resp)
		}
		printField(cmd, "request id", resp.RequestID)
		printField(cmd, "processing time (s)", resp.ProcessingTimeSeconds)
		printField(cmd, "multi classification", orNone(resp.MultiClassification))
		printField(cmd, "binary classification", orNone(resp.BinaryClassification))
		return nil
	},
}

func orNone(s string) string {
	if s == "" {
		return "(not reported)"
	}
	return s
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the client version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "sevocctl", Version)
	},
}

func init() {
	evaluateCmd.Flags().StringVarP(&evaluateFilename, "filename", "f", "", "file name relative to the server directory")
}
