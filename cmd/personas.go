package main

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/convoeval/internal/persona"
)

var personasCmd = &cobra.Command{
	Use:   "personas",
	Short: "Evaluate the built-in test persona conversations",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		convs := persona.Conversations()
		zap.L().Info("running persona batch", zap.Int("personas", len(convs)))

		report := env.processor.Run(ctx, convs)

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(report), "encode report")
	},
}

func init() {
	rootCmd.AddCommand(personasCmd)
}
