package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fentz26/breakroom/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "breakroom",
	Short: "Breakroom - team presence coordinator",
	Long: `Breakroom tracks who on a team is on break, adhoc or offline, enforces
per-category and total capacity limits, and keeps a durable log of absences.`,
	SilenceUsage: true,
}

var (
	apiAddr    string
	configPath string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&apiAddr, "api", "http://127.0.0.1:7466", "API server address")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "Path to config file")

	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(sayCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(absencesCmd)
	rootCmd.AddCommand(consoleCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
