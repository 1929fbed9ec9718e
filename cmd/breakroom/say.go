package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/user"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fentz26/breakroom/internal/controlplane"
)

var (
	sayAgent string
	sayName  string
	sayJSON  bool
)

var sayCmd = &cobra.Command{
	Use:   "say <message...>",
	Short: "Send a chat message as an agent",
	Long: `Sends one message to the coordinator and prints the reply, exactly as a chat
integration would post it. Examples:

  breakroom say --agent u42 --name Alice going on break
  breakroom say --agent u42 back
  breakroom say --agent u42 "break at 4:30 pm"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSay,
}

func init() {
	sayCmd.Flags().StringVar(&sayAgent, "agent", defaultAgentID(), "Agent ID to speak as")
	sayCmd.Flags().StringVar(&sayName, "name", "", "Display name (defaults to the agent ID)")
	sayCmd.Flags().BoolVar(&sayJSON, "json", false, "Print the full result as JSON")
}

func runSay(cmd *cobra.Command, args []string) error {
	name := sayName
	if name == "" {
		name = sayAgent
	}

	body, err := apiPost("/messages", controlplane.MessageRequest{
		AgentID:     sayAgent,
		DisplayName: name,
		Text:        strings.Join(args, " "),
	})
	if err != nil {
		return err
	}

	if sayJSON {
		_, err := os.Stdout.Write(append(body, '\n'))
		return err
	}

	var resp controlplane.MessageResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	if resp.Reply == "" {
		fmt.Fprintf(os.Stderr, "(no reply: %s)\n", resp.Outcome)
		return nil
	}
	fmt.Println(resp.Reply)
	return nil
}

// defaultAgentID uses the login name so local testing needs no flags.
func defaultAgentID() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "local"
}
