package main

import (
	"fmt"
	"os"

	"github.com/SaurabhKalal/rag-chatbot/cmd/cli/chat"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func init() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	rootCmd.AddGroup(chat.Group)
	rootCmd.AddCommand(chat.Legal)
}

var rootCmd = &cobra.Command{
	Use:  "rag-chatbot-cli",
	Long: `Command line utilities for the legal RAG chatbot`,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
