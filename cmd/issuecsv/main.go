package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Digital-Assistant/Project-Management-Utilities/internal/config"
	"github.com/Digital-Assistant/Project-Management-Utilities/internal/csvio"
	"github.com/Digital-Assistant/Project-Management-Utilities/internal/engine"
	"github.com/Digital-Assistant/Project-Management-Utilities/internal/graph"
	"github.com/Digital-Assistant/Project-Management-Utilities/internal/remedy"
	"github.com/Digital-Assistant/Project-Management-Utilities/internal/store"
	"github.com/Digital-Assistant/Project-Management-Utilities/internal/tracker"
	"github.com/Digital-Assistant/Project-Management-Utilities/pkg/types"
)

var rootCmd = &cobra.Command{
	Use:   "issuecsv",
	Short: "Create hierarchical GitHub issues from a CSV plan",
	Long: `issuecsv reads a flat CSV of work items with parent references, creates
the corresponding GitHub issues children-first so parent bodies can link
their children, and writes a state file after each completed top-level
item. Re-running against the state file skips everything already created.`,
}

func main() {
	cobra.OnInitialize(func() { config.Init(viper.GetViper()) })
	rootCmd.AddCommand(runCmd())
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	var resume, noResume bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process a CSV plan into GitHub issues",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := zap.NewProduction()
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			defer logger.Sync()

			settings, err := config.Load(viper.GetViper())
			if err != nil {
				return err
			}
			if resume && noResume {
				return fmt.Errorf("--resume and --no-resume are mutually exclusive")
			}
			return run(cmd.Context(), settings, resume, noResume, logger)
		},
	}

	cmd.Flags().StringP("input", "i", "", "input CSV file")
	cmd.Flags().StringP("output", "o", "", "state file path (default <input>_output.csv)")
	cmd.Flags().String("token", "", "GitHub token (defaults to GITHUB_TOKEN)")
	cmd.Flags().Int("max-attempts", engine.DefaultMaxAttempts, "creation attempts per issue")
	cmd.Flags().BoolVar(&resume, "resume", false, "resume from the state file without asking")
	cmd.Flags().BoolVar(&noResume, "no-resume", false, "ignore any existing state file")
	_ = viper.BindPFlag("input", cmd.Flags().Lookup("input"))
	_ = viper.BindPFlag("output", cmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("token", cmd.Flags().Lookup("token"))
	_ = viper.BindPFlag("max-attempts", cmd.Flags().Lookup("max-attempts"))

	return cmd
}

func run(ctx context.Context, settings config.Settings, resume, noResume bool, logger *zap.Logger) error {
	if settings.Token == "" {
		return fmt.Errorf("no GitHub token configured; set GITHUB_TOKEN or pass --token")
	}

	client := tracker.NewGitHub(settings.Token, logger)
	login, err := client.Viewer(ctx)
	if err != nil {
		return fmt.Errorf("GitHub authentication check failed: %w", err)
	}
	fmt.Printf("Authenticated with GitHub as %s.\n", login)

	input := settings.Input
	if input == "" {
		input, err = promptInputPath()
		if err != nil {
			return err
		}
	}
	if _, err := os.Stat(input); err != nil {
		return fmt.Errorf("input file %s not found: %w", input, err)
	}

	output := settings.Output
	if output == "" {
		output = config.DefaultOutput(input)
	}

	records, err := csvio.Load(input)
	if err != nil {
		return err
	}
	fmt.Printf("Loaded %d records from %s.\n", len(records), input)

	s := store.FromRecords(records)

	statePath := resumePath(output, resume, noResume)
	if statePath != "" {
		prior, err := csvio.LoadState(statePath)
		if err != nil {
			return fmt.Errorf("failed to load state file: %w", err)
		}
		done := s.MergeState(prior, logger)
		fmt.Printf("Resuming from %s: %d records already completed.\n", statePath, done)
	}

	roots := graph.Build(s, logger)
	fmt.Printf("Processing %d top-level records...\n", len(roots))

	snapshot := func(recs []*types.Record) error {
		return csvio.Snapshot(output, recs)
	}
	eng := engine.New(s, client, remedy.New(client, logger), snapshot, logger)
	eng.SetMaxAttempts(settings.MaxAttempts)

	if err := eng.Run(ctx, roots); err != nil {
		return err
	}

	printSummary(s.Records())
	fmt.Printf("Process complete. Final results saved to %s.\n", output)
	return nil
}

// resumePath decides whether to merge prior state: explicit flags win,
// otherwise the user is asked when a state file already exists.
func resumePath(output string, resume, noResume bool) string {
	if noResume {
		return ""
	}
	if _, err := os.Stat(output); err != nil {
		return ""
	}
	if resume {
		return output
	}
	fmt.Printf("Found existing state file %s. Resume from this file? (Y/n): ", output)
	answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	if answer == "" || answer == "y" || answer == "yes" {
		return output
	}
	return ""
}

func promptInputPath() (string, error) {
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("Please enter the path to your input CSV file: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read input path: %w", err)
		}
		path := strings.TrimSpace(line)
		if info, err := os.Stat(path); err == nil && !info.IsDir() && strings.HasSuffix(strings.ToLower(path), ".csv") {
			return path, nil
		}
		fmt.Println("File not found or not a .csv file. Please try again.")
	}
}

func printSummary(records []*types.Record) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Title", "Status", "Result"})
	for _, rec := range records {
		var status, result string
		switch rec.Outcome.State {
		case types.StateSucceeded:
			status, result = "created", rec.Outcome.URL
		case types.StateAssociationFailed:
			status, result = "created (not in project)", rec.Outcome.URL
		case types.StateFailed:
			status, result = "failed", rec.Outcome.Detail
		default:
			status = "pending"
		}
		t.AppendRow(table.Row{rec.Title, status, result})
	}
	t.Render()
}
