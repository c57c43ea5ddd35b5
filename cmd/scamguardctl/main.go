package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/scamguard/scamguard-backend/internal/dto"
	"github.com/scamguard/scamguard-backend/internal/models"
	"github.com/spf13/cobra"
)

func main() {
	// A missing .env is fine for a client.
	_ = godotenv.Load()

	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	var (
		server  string
		timeout time.Duration
		client  *apiClient
	)

	root := &cobra.Command{
		Use:           "scamguardctl",
		Short:         "Search and submit scam reports",
		Long:          `Command line client for a running scamguard server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			client = newAPIClient(server, timeout)
		},
	}
	defaultServer := os.Getenv("SCAMGUARD_SERVER")
	if defaultServer == "" {
		defaultServer = "http://localhost:8080"
	}
	root.PersistentFlags().StringVar(&server, "server", defaultServer, "base URL of the scamguard server")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "request timeout")
	root.SetOut(out)

	root.AddCommand(
		categoriesCmd(func() *apiClient { return client }),
		searchCmd(func() *apiClient { return client }),
		submitCmd(func() *apiClient { return client }),
		tipsCmd(func() *apiClient { return client }),
	)
	return root
}

func categoriesCmd(client func() *apiClient) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the report categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			categories, err := client().Categories()
			if err != nil {
				return err
			}
			for _, c := range categories {
				cmd.Println(c)
			}
			return nil
		},
	}
}

func searchCmd(client func() *apiClient) *cobra.Command {
	return &cobra.Command{
		Use:   "search [query]",
		Short: "Search approved reports by identifier",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reports, err := client().Search(strings.Join(args, " "))
			if err != nil {
				return err
			}
			if len(reports) == 0 {
				cmd.Println("No reports found.")
				return nil
			}
			for _, r := range reports {
				printReport(cmd, r)
			}
			return nil
		},
	}
}

func submitCmd(client func() *apiClient) *cobra.Command {
	var (
		categories   []string
		identifiers  map[string]string
		description  string
		incidentDate string
		name         string
		company      string
	)
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a new scam report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := dto.CreateReportRequest{
				Identifiers:  make(map[models.SearchCategory]string, len(identifiers)),
				Description:  description,
				ScammerInfo:  models.ScammerInfo{Name: name, Company: company},
				IncidentDate: incidentDate,
			}
			for _, c := range categories {
				req.Categories = append(req.Categories, models.SearchCategory(c))
			}
			for k, v := range identifiers {
				req.Identifiers[models.SearchCategory(k)] = v
			}
			if err := req.Validate(); err != nil {
				return err
			}

			report, err := client().Submit(req)
			if err != nil {
				return err
			}
			cmd.Printf("Report %s submitted and approved.\n", report.ID)
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&categories, "category", nil, "category of the report (repeatable)")
	cmd.Flags().StringToStringVar(&identifiers, "identifier", nil, "identifier per category, e.g. \"Email Address=a@b.com\"")
	cmd.Flags().StringVar(&description, "description", "", "what happened (at least 50 characters)")
	cmd.Flags().StringVar(&incidentDate, "incident-date", "", "date of the incident, e.g. 2024-03-01")
	cmd.Flags().StringVar(&name, "name", "", "name the scammer used")
	cmd.Flags().StringVar(&company, "company", "", "company the scammer claimed")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("description")
	_ = cmd.MarkFlagRequired("incident-date")
	return cmd
}

func tipsCmd(client func() *apiClient) *cobra.Command {
	var describe string
	cmd := &cobra.Command{
		Use:   "tips [report-id]",
		Short: "Show AI safety tips for a report, or for a description with --describe",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if describe != "" {
				analysis, err := client().Analyze(describe)
				if err != nil {
					return err
				}
				printAnalysis(cmd, analysis)
				return nil
			}
			if len(args) == 0 {
				return fmt.Errorf("a report id or --describe is required")
			}

			result, err := client().Tips(args[0])
			if err != nil {
				return err
			}
			cmd.Printf("Status: %s\n", result.Status)
			if result.Analysis != nil {
				printAnalysis(cmd, result.Analysis)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&describe, "describe", "", "analyze this description instead of a stored report")
	return cmd
}

func printReport(cmd *cobra.Command, r models.Report) {
	cmd.Printf("[%s] %s\n", r.ID, r.CreatedAt.Format(time.DateOnly))
	for _, c := range r.Categories {
		cmd.Printf("  %s: %s\n", c, r.Identifiers[c])
	}
	if r.ScammerInfo.Name != "" {
		cmd.Printf("  Name: %s\n", r.ScammerInfo.Name)
	}
	if r.ScammerInfo.Company != "" {
		cmd.Printf("  Company: %s\n", r.ScammerInfo.Company)
	}
	cmd.Printf("  %s\n", r.Description)
}

func printAnalysis(cmd *cobra.Command, a *models.SafetyAnalysis) {
	cmd.Println(a.Summary)
	for i, tip := range a.Tips {
		cmd.Printf("%d. %s\n", i+1, tip)
	}
}
