package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/anatolykoptev/go_connect/internal/connections"
	"github.com/anatolykoptev/go_connect/internal/toolutil"
)

const runTimeout = 5 * time.Minute

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "go_connect",
		Short:        "Find people and programs that share your background",
		Version:      version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
	root.AddCommand(newServeCmd(), newRunCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server (default)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
}

type runFlags struct {
	goal           string
	background     string
	backgroundFile string
	education      string
	people         bool
	programs       bool
	maxIterations  int
	maxQueries     int
	maxURLs        int
	format         string
}

func newRunCmd() *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one discovery and print the connections",
		Long: `Run one discovery from the command line.

The background is read from --background, --background-file, or stdin
when --background-file is "-". Output is text (default), json or yaml.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOnce(cmd, f)
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&f.goal, "goal", "g", "", "career goal (required)")
	fl.StringVarP(&f.background, "background", "b", "", "background text")
	fl.StringVar(&f.backgroundFile, "background-file", "", "read background text from a file (\"-\" for stdin)")
	fl.StringVar(&f.education, "education", "", "education level")
	fl.BoolVar(&f.people, "people", false, "return people")
	fl.BoolVar(&f.programs, "programs", false, "return programs")
	fl.IntVar(&f.maxIterations, "max-iterations", 0, "search passes (default 3, max 6)")
	fl.IntVar(&f.maxQueries, "max-queries", 0, "queries per pass (default 6, max 12)")
	fl.IntVar(&f.maxURLs, "max-urls", 0, "results per query (default 5, max 10)")
	fl.StringVarP(&f.format, "format", "o", "text", "output format: text, json, yaml")
	_ = cmd.MarkFlagRequired("goal")
	return cmd
}

func runOnce(cmd *cobra.Command, f runFlags) error {
	background, err := readBackground(f.background, f.backgroundFile, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if err := checkFormat(f.format); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	a, err := initApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	in := connections.RunInput{
		GoalTitle:              f.goal,
		RawBackgroundText:      background,
		EducationLevel:         f.education,
		Preferences:            connections.Preferences{Connections: f.people, Programs: f.programs},
		MaxIterations:          f.maxIterations,
		MaxQueriesPerIteration: f.maxQueries,
		MaxURLsPerQuery:        f.maxURLs,
	}
	res, cached, err := toolutil.CachedRun(ctx, a.finder, in)
	if !cached {
		toolutil.SaveRun(ctx, a.runs, in, res, err)
	}
	if err != nil {
		if text, ok := toolutil.Suggestion(err); ok {
			fmt.Fprintln(cmd.ErrOrStderr(), text)
		}
		return err
	}
	return writeResult(cmd.OutOrStdout(), f.format, res)
}

func readBackground(text, path string, stdin io.Reader) (string, error) {
	if strings.TrimSpace(text) != "" {
		return text, nil
	}
	var (
		data []byte
		err  error
	)
	switch path {
	case "":
		return "", errors.New("one of --background or --background-file is required")
	case "-":
		data, err = io.ReadAll(stdin)
	default:
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read background: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", errors.New("background is empty")
	}
	return string(data), nil
}

func checkFormat(format string) error {
	switch format {
	case "text", "json", "yaml":
		return nil
	}
	return fmt.Errorf("unknown format %q (valid: text, json, yaml)", format)
}

func writeResult(w io.Writer, format string, res *connections.RunResult) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case "yaml":
		// Round-trip through JSON so yaml keys follow the json tags.
		data, err := json.Marshal(res)
		if err != nil {
			return err
		}
		var generic any
		if err := json.Unmarshal(data, &generic); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(generic)
	}
	_, err := io.WriteString(w, renderText(res))
	return err
}
