package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/convoeval/internal/upload"
)

var evaluateOutput string

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <conversations.csv>",
	Short: "Score a CSV of conversations against the quality rubric",
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
		zap.L().Info("parsed conversations", zap.Int("count", len(convs)))

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		report := env.processor.Run(ctx, convs)

		out := cmd.OutOrStdout()
		if evaluateOutput != "" {
			of, err := os.Create(evaluateOutput)
			if err != nil {
				return eris.Wrapf(err, "create %s", evaluateOutput)
			}
			defer of.Close()
			out = of
		}

		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(report), "encode report")
	},
}

func init() {
	evaluateCmd.Flags().StringVarP(&evaluateOutput, "output", "o", "", "write the batch report to a file instead of stdout")
	rootCmd.AddCommand(evaluateCmd)
}
