package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/convoeval/internal/upload"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <conversations.csv>",
	Short: "Run signal analysis over a CSV of conversations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		f, err := os.Open(args[0])
		if err != nil {
			return eris.Wrapf(err, "open %s", args[0])
		}
		defer f.Close()

		convs, err := upload.ParseCSV(f)
		if err != nil {
			return err
		}

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		result, err := env.analyzer.Run(ctx, convs)
		if err != nil {
			return err
		}

		zap.L().Info("analysis stored", zap.String("analysis_id", result.AnalysisID))

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(result), "encode analysis")
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}
