// Command corpusagent answers a question about a corpus by running the
// recursive reasoning loop against it.
//
//	corpusagent --corpus report.txt "What incidents does the report cover?"
//	corpusagent --corpus ./docs/ --json "Which services had outages?"
//
// A corpus path naming a file is loaded as one text blob; a directory is
// loaded as an ordered document list, one document per file, sorted by name.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/martinemde/corpusagent/corpusloop"
	"github.com/martinemde/corpusagent/llmclient"
	"github.com/martinemde/corpusagent/luaenv"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type cliOptions struct {
	corpusPath string
	configPath string
	rootModel  string
	subModel   string
	iterations int
	subQueries int
	outputJSON bool
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	cmd := &cobra.Command{
		Use:   "corpusagent [flags] QUESTION",
		Short: "Answer a question about a corpus via script-driven reasoning",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, args[0])
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVarP(&opts.corpusPath, "corpus", "c", "", "corpus file or directory (required)")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "YAML config file")
	cmd.Flags().StringVar(&opts.rootModel, "root-model", "", "root reasoning model")
	cmd.Flags().StringVar(&opts.subModel, "sub-model", "", "secondary model for llm() calls")
	cmd.Flags().IntVar(&opts.iterations, "max-iterations", 0, "iteration ceiling")
	cmd.Flags().IntVar(&opts.subQueries, "max-sub-queries", -1, "sub-query ceiling (0 disables)")
	cmd.Flags().BoolVar(&opts.outputJSON, "json", false, "print the full result as JSON")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "stream session events to stderr")
	_ = cmd.MarkFlagRequired("corpus")

	return cmd
}

func run(ctx context.Context, opts *cliOptions, question string) error {
	cfg, err := buildConfig(opts)
	if err != nil {
		return err
	}

	corpus, err := loadCorpus(opts.corpusPath)
	if err != nil {
		return err
	}

	client := llmclient.NewClientFromEnv()
	defer client.Close()

	session := corpusloop.NewSession(client, corpus, &cfg)

	events := make(chan struct{})
	go func() {
		defer close(events)
		for ev := range session.Events() {
			if opts.verbose {
				printEvent(ev)
			}
		}
	}()

	result, runErr := session.Run(ctx, question)
	<-events
	if runErr != nil && result == nil {
		return runErr
	}

	if opts.outputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printResult(result)
	return runErr
}

// buildConfig layers flags over the optional YAML config over defaults.
func buildConfig(opts *cliOptions) (corpusloop.Config, error) {
	cfg := corpusloop.DefaultConfig()

	if opts.configPath != "" {
		data, err := os.ReadFile(opts.configPath)
		if err != nil {
			return cfg, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", opts.configPath, err)
		}
	}

	if opts.rootModel != "" {
		cfg.RootModel = opts.rootModel
	}
	if opts.subModel != "" {
		cfg.SubQueryModel = opts.subModel
	}
	if opts.iterations > 0 {
		cfg.MaxIterations = opts.iterations
	}
	if opts.subQueries >= 0 {
		cfg.MaxSubQueries = opts.subQueries
	}
	return cfg, nil
}

// loadCorpus reads a file as a text blob, or a directory as an ordered
// document list.
func loadCorpus(path string) (*luaenv.Corpus, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("corpus path: %w", err)
	}

	if !info.IsDir() {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading corpus: %w", err)
		}
		return luaenv.FromText(string(data)), nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("reading corpus directory: %w", err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	if len(names) == 0 {
		return nil, fmt.Errorf("corpus directory %s contains no files", path)
	}

	docs := make([]string, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(path, name))
		if err != nil {
			return nil, fmt.Errorf("reading document %s: %w", name, err)
		}
		docs = append(docs, string(data))
	}
	return luaenv.FromDocuments(docs), nil
}

func printEvent(ev corpusloop.SessionEvent) {
	switch ev.Kind {
	case corpusloop.EventIterationStart:
		fmt.Fprintf(os.Stderr, "[iteration %v]\n", ev.Data["iteration"])
	case corpusloop.EventBlockEnd:
		fmt.Fprintf(os.Stderr, "  block %v ok=%v\n", ev.Data["index"], ev.Data["success"])
	case corpusloop.EventSubQuery:
		if denied, _ := ev.Data["denied"].(bool); denied {
			fmt.Fprintln(os.Stderr, "  sub-query denied: budget exhausted")
		} else {
			fmt.Fprintf(os.Stderr, "  sub-query %v\n", ev.Data["used"])
		}
	case corpusloop.EventError, corpusloop.EventWarning:
		fmt.Fprintf(os.Stderr, "  %s: %v\n", ev.Kind, ev.Data)
	}
}

func printResult(result *corpusloop.Result) {
	if result == nil {
		return
	}
	if result.Success {
		fmt.Println(result.Answer)
	} else {
		fmt.Printf("no answer (%s)\n", result.Reason)
		if result.Error != "" {
			fmt.Println(result.Error)
		}
	}
	fmt.Printf("\niterations=%d sub_queries=%d tokens=%d cost=$%.4f\n",
		result.Iterations, result.SubQueries, result.TotalUsage.TotalTokens, result.Cost)
}
