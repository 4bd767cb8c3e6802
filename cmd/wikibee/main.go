package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/patrickdeanbrown/wikibee/pkg/logger"
)

var (
	version   = "dev"
	gitCommit string
)

func formatVersion() string {
	v := version
	if gitCommit != "" {
		v += fmt.Sprintf(" (git: %s)", gitCommit)
	}
	return v
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "wikibee",
		Short:         "Turn Wikipedia articles into markdown, TTS text, and audiobooks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("config", "", "Path to config file (default: user config dir)")
	root.PersistentFlags().BoolP("verbose", "v", false, "Verbose logging")

	root.AddCommand(
		newExtractCmd(),
		newConfigCmd(),
		newHistoryCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("wikibee %s\n", formatVersion())
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger.Error(err.Error())
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
