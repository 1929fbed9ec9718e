package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/fentz26/breakroom/internal/models"
)

var statusFormat string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show who is away right now",
	RunE:  runStatus,
}

var (
	absencesAgent string
	absencesOpen  bool
	absencesLimit int
)

var absencesCmd = &cobra.Command{
	Use:   "absences",
	Short: "List logged break and offline periods",
	RunE:  runAbsences,
}

func init() {
	statusCmd.Flags().StringVar(&statusFormat, "format", "text", "Output format (text, markdown, json)")

	absencesCmd.Flags().StringVar(&absencesAgent, "agent", "", "Filter by agent ID")
	absencesCmd.Flags().BoolVar(&absencesOpen, "open", false, "Only show absences that have not ended")
	absencesCmd.Flags().IntVar(&absencesLimit, "limit", 50, "Maximum rows to show (0 for all)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	switch statusFormat {
	case "text", "markdown", "json":
	default:
		return fmt.Errorf("invalid format %q, must be: text, markdown, or json", statusFormat)
	}

	body, err := apiGet("/snapshot?format=" + statusFormat)
	if err != nil {
		return err
	}
	fmt.Println(string(body))
	return nil
}

func runAbsences(cmd *cobra.Command, args []string) error {
	q := url.Values{}
	if absencesAgent != "" {
		q.Set("agent", absencesAgent)
	}
	if absencesOpen {
		q.Set("open", "true")
	}
	q.Set("limit", strconv.Itoa(absencesLimit))

	body, err := apiGet("/absences?" + q.Encode())
	if err != nil {
		return err
	}

	var absences []models.Absence
	if err := json.Unmarshal(body, &absences); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if len(absences) == 0 {
		fmt.Println("No absences found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "AGENT\tNAME\tCATEGORY\tSTARTED\tDURATION")
	for _, a := range absences {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			a.AgentID, a.DisplayName, a.Category,
			a.StartedAt.Local().Format("2006-01-02 15:04"),
			absenceDuration(a, time.Now()))
	}
	return w.Flush()
}

func absenceDuration(a models.Absence, now time.Time) string {
	if a.EndedAt == nil {
		return now.Sub(a.StartedAt).Round(time.Minute).String() + " (ongoing)"
	}
	return a.EndedAt.Sub(a.StartedAt).Round(time.Minute).String()
}
