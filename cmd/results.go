package main

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var resultsCmd = &cobra.Command{
	Use:   "results [conversation-id]",
	Short: "List stored evaluation results, or show one by conversation ID",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")

		if len(args) == 1 {
			result, err := st.GetEvaluation(ctx, args[0])
			if err != nil {
				return err
			}
			return eris.Wrap(enc.Encode(result), "encode result")
		}

		results, err := st.ListEvaluations(ctx)
		if err != nil {
			return err
		}
		return eris.Wrap(enc.Encode(results), "encode results")
	},
}

func init() {
	rootCmd.AddCommand(resultsCmd)
}
