package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"log/slog"

	"github.com/civicstudy/civica/pkg/civics"
	"github.com/civicstudy/civica/pkg/dataset"
	"github.com/civicstudy/civica/pkg/directory"
	"github.com/civicstudy/civica/pkg/fetch"
	"github.com/civicstudy/civica/pkg/sources"
	"github.com/civicstudy/civica/pkg/updates"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "civica",
		Short: "Civics test data set builder",
		Long: `Civica turns the published naturalization civics test documents into a
structured, versioned question data set.

It fetches the official question list, parses it into themes, sections,
questions and answers, reconciles the published answer updates, and
attaches the current officeholder directories for the questions whose
answers vary by state.`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")

	rootCmd.AddCommand(buildCmd())
	rootCmd.AddCommand(parseCmd())
	rootCmd.AddCommand(classifyCmd())
	rootCmd.AddCommand(reconcileCmd())
	rootCmd.AddCommand(directoryCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(sourcesCmd())
	rootCmd.AddCommand(watchCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger builds the process logger, honoring the --verbose flag.
func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// newRegistry seeds the default sources and overlays the YAML files in the
// --sources directory, when one is given.
func newRegistry(cmd *cobra.Command) (*sources.Registry, error) {
	dir, _ := cmd.Flags().GetString("sources")
	if dir == "" {
		return sources.NewRegistry(), nil
	}
	return sources.NewRegistryWithDirectory(dir)
}

func newFetcher(cmd *cobra.Command, logger *slog.Logger) (*fetch.Client, error) {
	cacheDir, _ := cmd.Flags().GetString("cache-dir")
	cacheTTL, _ := cmd.Flags().GetDuration("cache-ttl")
	rateLimit, _ := cmd.Flags().GetDuration("rate-limit")

	return fetch.NewClient(fetch.Config{
		RateLimit: rateLimit,
		CacheDir:  cacheDir,
		CacheTTL:  cacheTTL,
		Logger:    logger,
	})
}

// addFetchFlags registers the flags shared by every command that reaches
// the network.
func addFetchFlags(cmd *cobra.Command) {
	cmd.Flags().String("sources", "", "directory of YAML source overrides")
	cmd.Flags().String("cache-dir", ".civica-cache", "disk cache directory (empty disables caching)")
	cmd.Flags().Duration("cache-ttl", fetch.DefaultCacheTTL, "how long cached documents stay fresh")
	cmd.Flags().Duration("rate-limit", fetch.DefaultRequestInterval, "minimum interval between HTTP requests")
}

func buildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the question data set from the configured sources",
		Long: `Build fetches every configured source, parses the baseline question
document, reconciles the published answer updates, attaches the
officeholder directories, and writes questions.json plus a build
manifest into the output directory.

Example:
  civica build --output dataset
  civica build --sources ./sources --cache-dir ./cache`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")
			timeout, _ := cmd.Flags().GetDuration("timeout")

			logger := newLogger(cmd)
			registry, err := newRegistry(cmd)
			if err != nil {
				return err
			}
			fetcher, err := newFetcher(cmd, logger)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			result, err := runBuild(ctx, fetcher, registry, logger)
			if err != nil {
				return err
			}

			if err := dataset.WriteDataset(output, result.Questions, result.Manifest); err != nil {
				return err
			}

			fmt.Printf("Wrote %s and %s to %s/\n", dataset.QuestionsFile, dataset.ManifestFile, output)
			printStats(result.Manifest.Stats)
			if len(result.Manifest.UpdatesSkipped) > 0 {
				fmt.Printf("\nUpdates that matched no question:\n")
				for _, question := range result.Manifest.UpdatesSkipped {
					fmt.Printf("  - %s\n", question)
				}
			}
			return nil
		},
	}

	addFetchFlags(cmd)
	cmd.Flags().String("output", "dataset", "output directory")
	cmd.Flags().Duration("timeout", 5*time.Minute, "overall build timeout")
	return cmd
}

func runBuild(ctx context.Context, fetcher dataset.Fetcher, registry *sources.Registry, logger *slog.Logger) (*dataset.BuildResult, error) {
	builder := &dataset.Builder{
		Fetcher:  fetcher,
		Registry: registry,
		Logger:   logger,
	}
	return builder.Build(ctx)
}

func parseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse a local question document",
		Long: `Parse reads a question document from a local file, cleans and parses
it, and prints the flattened question list as JSON.

Example:
  civica parse 100q.txt
  civica parse 100q.txt --output questions.json --stats`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")
			showStats, _ := cmd.Flags().GetBool("stats")
			showTree, _ := cmd.Flags().GetBool("tree")

			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}

			if showTree {
				printTree(civics.ParseTree(string(raw)))
				return nil
			}

			questions := civics.Parse(string(raw))
			if len(questions) == 0 {
				return fmt.Errorf("%s contains no recognizable questions", args[0])
			}

			if output != "" {
				if err := dataset.WriteQuestions(output, questions); err != nil {
					return err
				}
				fmt.Printf("Wrote %d questions to %s\n", len(questions), output)
			} else {
				if err := printJSON(cmd, questions); err != nil {
					return err
				}
			}

			if showStats {
				printStats(civics.Stats(questions))
			}
			return nil
		},
	}

	cmd.Flags().String("output", "", "write questions to this file instead of stdout")
	cmd.Flags().Bool("stats", false, "print summary statistics")
	cmd.Flags().Bool("tree", false, "print the theme/section outline instead of JSON")
	return cmd
}

func printTree(themes []*civics.Theme) {
	for _, theme := range themes {
		fmt.Printf("%s\n", theme.Name)
		for _, section := range theme.Sections {
			fmt.Printf("  %s (%d questions)\n", section.Name, len(section.Questions))
			for _, question := range section.Questions {
				fmt.Printf("    %d. %s\n", question.Number, question.Text)
			}
		}
	}
}

func classifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify [file]",
		Short: "Show the line-by-line classification of a document",
		Long: `Classify cleans a document and prints the classification of every
line, for debugging parser behavior on a new document revision.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")

			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}

			var lines []civics.Line
			for _, rawLine := range strings.Split(civics.Clean(string(raw)), "\n") {
				lines = append(lines, civics.Classify(rawLine))
			}

			if asJSON {
				return printJSON(cmd, lines)
			}
			for i, line := range lines {
				fmt.Printf("%4d  %-8s  %s\n", i+1, line.Kind, line.Text)
			}
			return nil
		},
	}

	cmd.Flags().Bool("json", false, "emit classified lines as JSON")
	return cmd
}

func reconcileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Merge an answer-updates page into a parsed question set",
		Long: `Reconcile extracts question/answer partials from a saved answer-updates
HTML page and merges them into a previously parsed question set.

Example:
  civica reconcile --baseline questions.json --updates updates.html --output merged.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			baselinePath, _ := cmd.Flags().GetString("baseline")
			updatesPath, _ := cmd.Flags().GetString("updates")
			output, _ := cmd.Flags().GetString("output")

			if baselinePath == "" || updatesPath == "" {
				return fmt.Errorf("--baseline and --updates flags are required")
			}

			baseline, err := dataset.ReadQuestions(baselinePath)
			if err != nil {
				return err
			}

			page, err := os.ReadFile(updatesPath)
			if err != nil {
				return fmt.Errorf("reading %s: %w", updatesPath, err)
			}
			partials, err := updates.Extract(string(page))
			if err != nil {
				return err
			}

			result, err := civics.Reconcile(baseline, partials)
			if err != nil {
				return err
			}

			applied := len(partials) - len(result.Skipped)
			fmt.Printf("Applied %d of %d updates\n", applied, len(partials))
			for _, skipped := range result.Skipped {
				fmt.Printf("  skipped: %s\n", skipped)
			}

			if output != "" {
				if err := dataset.WriteQuestions(output, result.Merged); err != nil {
					return err
				}
				fmt.Printf("Wrote merged questions to %s\n", output)
				return nil
			}
			return printJSON(cmd, result.Merged)
		},
	}

	cmd.Flags().String("baseline", "", "parsed question set (JSON)")
	cmd.Flags().String("updates", "", "saved answer-updates HTML page")
	cmd.Flags().String("output", "", "write merged questions to this file instead of stdout")
	return cmd
}

func directoryCmd() *cobra.Command {
	parsers := map[string]struct {
		kind  sources.Kind
		parse func(string) ([]directory.Officeholder, error)
	}{
		"senators":        {sources.KindSenators, directory.ParseSenators},
		"representatives": {sources.KindRepresentatives, directory.ParseRepresentatives},
		"governors":       {sources.KindGovernors, directory.ParseGovernors},
	}

	cmd := &cobra.Command{
		Use:   "directory [senators|representatives|governors]",
		Short: "Fetch and print an officeholder directory",
		Long: `Directory fetches one officeholder directory, parses it, and prints
the officeholders grouped by state.

Example:
  civica directory senators
  civica directory governors --file governors.html --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, ok := parsers[args[0]]
			if !ok {
				return fmt.Errorf("unknown directory %q (want senators, representatives, or governors)", args[0])
			}

			file, _ := cmd.Flags().GetString("file")
			asJSON, _ := cmd.Flags().GetBool("json")
			logger := newLogger(cmd)

			var body []byte
			if file != "" {
				var err error
				body, err = os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("reading %s: %w", file, err)
				}
			} else {
				registry, err := newRegistry(cmd)
				if err != nil {
					return err
				}
				source, ok := registry.First(entry.kind)
				if !ok {
					return fmt.Errorf("no %s source registered", entry.kind)
				}
				fetcher, err := newFetcher(cmd, logger)
				if err != nil {
					return err
				}
				body, err = fetcher.GetWithTTL(cmd.Context(), source.URL, source.CacheTTL)
				if err != nil {
					return err
				}
			}

			officeholders, err := entry.parse(string(body))
			if err != nil {
				return err
			}
			if len(officeholders) == 0 {
				return fmt.Errorf("no officeholders found; the page layout may have changed")
			}

			if asJSON {
				return printJSON(cmd, directory.ByState(officeholders))
			}

			byState := directory.ByState(officeholders)
			for _, state := range directory.States(officeholders) {
				fmt.Printf("%s: %s\n", state, strings.Join(byState[state], "; "))
			}
			fmt.Printf("\n%d officeholders across %d states\n", len(officeholders), len(byState))
			return nil
		},
	}

	addFetchFlags(cmd)
	cmd.Flags().String("file", "", "parse a saved local copy instead of fetching")
	cmd.Flags().Bool("json", false, "emit the by-state map as JSON")
	return cmd
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats [questions.json]",
		Short: "Print summary statistics for a question data set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			questions, err := dataset.ReadQuestions(args[0])
			if err != nil {
				return err
			}
			printStats(civics.Stats(questions))

			multi := 0
			for _, question := range questions {
				if question.ExpectedAnswers > 1 {
					multi++
				}
			}
			fmt.Printf("  Multi-answer questions: %d\n", multi)
			return nil
		},
	}
}

func sourcesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "List the configured sources",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := newRegistry(cmd)
			if err != nil {
				return err
			}
			for _, source := range registry.List() {
				fmt.Printf("%-20s %-16s %s\n", source.Name, source.Kind, source.URL)
			}
			return nil
		},
	}

	cmd.Flags().String("sources", "", "directory of YAML source overrides")
	return cmd
}

func watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Rebuild the data set whenever the source configuration changes",
		Long: `Watch runs a build, then watches the --sources directory and rebuilds
whenever a source file is added, changed, or removed. Stop with Ctrl-C.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")
			timeout, _ := cmd.Flags().GetDuration("timeout")
			sourcesDir, _ := cmd.Flags().GetString("sources")

			if sourcesDir == "" {
				return fmt.Errorf("--sources flag is required")
			}

			logger := newLogger(cmd)
			registry, err := newRegistry(cmd)
			if err != nil {
				return err
			}
			fetcher, err := newFetcher(cmd, logger)
			if err != nil {
				return err
			}

			rebuild := func() {
				ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
				defer cancel()

				result, err := runBuild(ctx, fetcher, registry, logger)
				if err != nil {
					logger.Error("build failed", "error", err)
					return
				}
				if err := dataset.WriteDataset(output, result.Questions, result.Manifest); err != nil {
					logger.Error("write failed", "error", err)
					return
				}
				logger.Info("data set written", "dir", output, "questions", len(result.Questions))
			}

			rebuild()

			stop, err := registry.Watch(logger, rebuild)
			if err != nil {
				return err
			}
			defer stop()

			fmt.Printf("Watching %s for source changes (Ctrl-C to stop)\n", sourcesDir)
			signals := make(chan os.Signal, 1)
			signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
			<-signals
			fmt.Println("\nStopping")
			return nil
		},
	}

	addFetchFlags(cmd)
	cmd.Flags().String("output", "dataset", "output directory")
	cmd.Flags().Duration("timeout", 5*time.Minute, "per-build timeout")
	return cmd
}

func printStats(stats civics.Statistics) {
	fmt.Printf("\nData set statistics:\n")
	fmt.Printf("  Themes:    %d\n", stats.Themes)
	fmt.Printf("  Sections:  %d\n", stats.Sections)
	fmt.Printf("  Questions: %d\n", stats.Questions)
	fmt.Printf("  Answers:   %d\n", stats.Answers)
}

func printJSON(cmd *cobra.Command, value any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
