package main

import (
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/spf13/cobra"

	"github.com/fentz26/breakroom/internal/tui"
)

var (
	consoleAgent   string
	consoleName    string
	consoleNoStart bool
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Launch the interactive console",
	RunE:  runConsole,
}

func init() {
	consoleCmd.Flags().StringVar(&consoleAgent, "agent", defaultAgentID(), "Agent ID to speak as")
	consoleCmd.Flags().StringVar(&consoleName, "name", "", "Display name (defaults to the agent ID)")
	consoleCmd.Flags().BoolVar(&consoleNoStart, "no-start", false, "Do not start a daemon when none is running")
}

func runConsole(cmd *cobra.Command, args []string) error {
	if !isDaemonRunning(apiAddr) {
		if consoleNoStart {
			return fmt.Errorf("no daemon reachable at %s", apiAddr)
		}
		fmt.Println("Breakroom daemon not running. Starting background service...")
		if err := startDaemon(); err != nil {
			return fmt.Errorf("failed to start daemon: %w", err)
		}
	}

	app := tui.New(apiAddr, consoleAgent, consoleName)
	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

func startDaemon() error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}

	cmd := exec.Command(exe, "daemon", "--config", configPath)
	detachDaemon(cmd)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil

	if err := cmd.Start(); err != nil {
		return err
	}

	fmt.Print("   Waiting for daemon...")
	for i := 0; i < 20; i++ {
		if isDaemonRunning(apiAddr) {
			fmt.Println(" Done.")
			return nil
		}
		time.Sleep(250 * time.Millisecond)
		fmt.Print(".")
	}
	fmt.Println(" Timeout!")
	return fmt.Errorf("daemon started but API not reachable at %s", apiAddr)
}
