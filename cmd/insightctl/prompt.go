package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gopherai-insight/internal/app"
)

func newPromptCmd() *cobra.Command {
	var (
		mediaType string
		message   string
		mode      string
		name      string
	)
	cmd := &cobra.Command{
		Use:   "prompt <file>",
		Short: "Print the system and user prompt a chat turn would send for a dataset file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chatMode, err := app.ParseChatMode(mode)
			if err != nil {
				return fmt.Errorf("%w: %s", err, mode)
			}
			f, err := loadFile(args[0], mediaType)
			if err != nil {
				return err
			}
			pair := app.ComposePrompt(message, chatMode, f.dataset(name))

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "--- system ---")
			fmt.Fprintln(out, pair.System)
			fmt.Fprintln(out, "--- user ---")
			fmt.Fprintln(out, pair.User)
			return nil
		},
	}
	cmd.Flags().StringVar(&mediaType, "type", "", "media type of the file; detected when empty")
	cmd.Flags().StringVarP(&message, "message", "m", "", "chat message")
	cmd.Flags().StringVar(&mode, "mode", string(app.ModeDataAnalysis), "chat mode: general or data_analysis")
	cmd.Flags().StringVar(&name, "name", "", "dataset name (defaults to the file name)")
	_ = cmd.MarkFlagRequired("message")
	return cmd
}
