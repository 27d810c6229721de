package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "textlens",
		Short: "Visual text analysis tool with LLM-powered image search",
		Long: `TextLens splits text into paragraphs, generates image search queries
with a language model, and collects matching images from DuckDuckGo,
Pixabay, Pinterest, and SearXNG.

It ships an installer for the working directory, a CLI analysis
pipeline with batch dataset support, and a web interface.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	// Add subcommands
	cmd.AddCommand(newInstallCmd())
	cmd.AddCommand(newAnalyzeCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}
