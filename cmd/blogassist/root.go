package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

type rootOptions struct {
	configPath string
	debug      bool
	mockLLM    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:           "blogassist",
		Short:         "Conversational blog writing assistant",
		Long:          "blogassist drafts, edits and saves blog posts through a chat conversation, over HTTP or Telegram.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to config file (default ./config.yaml if present)")
	flags.BoolVar(&opts.debug, "debug", false, "enable development logging")
	flags.BoolVar(&opts.mockLLM, "mock-llm", false, "answer with canned demo content instead of calling OpenAI")

	rootCmd.AddCommand(
		newServeCmd(opts),
		newBotCmd(opts),
		newVersionCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version)
			return err
		},
	}
}
