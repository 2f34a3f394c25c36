// Command sqleibniz lexes, parses and diagnoses SQLite source files, or
// starts a language server over stdio.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xqlint/sqleibniz/internal/config"
	"github.com/xqlint/sqleibniz/internal/lsp"
	"github.com/xqlint/sqleibniz/pkg/ast"
	"github.com/xqlint/sqleibniz/pkg/diagnostic"
	"github.com/xqlint/sqleibniz/pkg/lexer"
	"github.com/xqlint/sqleibniz/pkg/parser"
)

var (
	colorBlue   = color.New(color.FgBlue)
	colorGreen  = color.New(color.FgGreen)
	colorRed    = color.New(color.FgRed)
	colorYellow = color.New(color.FgYellow)
)

type cliFlags struct {
	ignoreConfig bool
	configPath   string
	silent       bool
	disable      []string
	astJSON      bool
	ast          bool
	lsp          bool
}

// fileResult tracks the outcome of analysing one source path, mirroring
// the original's per-file tally.
type fileResult struct {
	name          string
	errors        int
	ignoredErrors int
}

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	flags := &cliFlags{}

	root := &cobra.Command{
		Use:           "sqleibniz [paths...]",
		Short:         "LSP and analysis CLI for SQLite SQL. Checks for valid syntax, semantics, and quirks.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(log, flags, args)
		},
	}

	root.Flags().BoolVar(&flags.ignoreConfig, "ignore-config", false, "instruct sqleibniz to ignore the configuration, if specified")
	root.Flags().StringVarP(&flags.configPath, "config", "c", "leibniz.lua", "path to the configuration")
	root.Flags().BoolVarP(&flags.silent, "silent", "s", false, "disable stdout/stderr output")
	root.Flags().StringArrayVarP(&flags.disable, "disable", "D", nil, "disable diagnostics by their rule name, all are enabled by default")
	root.Flags().BoolVar(&flags.astJSON, "ast-json", false, "dump the abstract syntax tree as pretty printed json")
	root.Flags().BoolVar(&flags.ast, "ast", false, "dump the abstract syntax tree as a Go value dump")
	root.Flags().BoolVar(&flags.lsp, "lsp", false, "invoke sqleibniz as a language server")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(log *zap.Logger, flags *cliFlags, paths []string) error {
	if flags.lsp {
		log.Info("starting language server")
		server := lsp.New(log)
		if err := server.Run(context.Background()); err != nil {
			return fmt.Errorf("fatal error in language server: %w", err)
		}
		return nil
	}

	if len(paths) == 0 {
		if !flags.silent {
			colorRed.Fprint(os.Stderr, "error: ")
			fmt.Fprintln(os.Stderr, "no source file(s) provided, exiting")
		}
		os.Exit(1)
	}

	cfg := config.Default()
	if !flags.ignoreConfig {
		loaded, err := config.Load(flags.configPath)
		if err != nil {
			if !flags.silent {
				colorYellow.Fprint(os.Stderr, "warning: ")
				fmt.Fprintln(os.Stderr, err)
			}
		} else {
			cfg = loaded
		}
	}
	defer cfg.Close()

	for _, name := range flags.disable {
		if rule, ok := diagnostic.RuleByName(name); ok {
			cfg.DisabledRules = append(cfg.DisabledRules, rule)
		}
	}

	if len(cfg.DisabledRules) != 0 && !flags.silent {
		colorYellow.Fprintln(os.Stderr, "Ignoring the following diagnostics, as specified:")
		for _, r := range cfg.DisabledRules {
			colorBlue.Fprint(os.Stderr, " -> ")
			fmt.Fprintln(os.Stderr, r.Name())
		}
	}

	disabled := cfg.DisabledSet()
	results := make([]fileResult, len(paths))
	for i, name := range paths {
		results[i] = analyzeFile(log, cfg, flags, name, disabled)
	}

	if flags.silent {
		verified := countVerified(results)
		if verified != len(results) {
			os.Exit(1)
		}
		return nil
	}

	printSummary(results)

	if countVerified(results) != len(results) {
		os.Exit(1)
	}
	return nil
}

func analyzeFile(log *zap.Logger, cfg *config.Config, flags *cliFlags, name string, disabled map[diagnostic.Rule]bool) fileResult {
	content, err := os.ReadFile(name)
	if err != nil {
		if !flags.silent {
			colorRed.Fprint(os.Stderr, "error: ")
			fmt.Fprintf(os.Stderr, "failed to read file '%s': %v\n", name, err)
		}
		os.Exit(1)
	}

	l := lexer.New(content, name)
	tokens := l.Run()
	diags := append([]diagnostic.Diagnostic{}, l.Diagnostics...)

	var parseDiags []diagnostic.Diagnostic
	if len(tokens) != 0 {
		nodes, pd := parser.ParseAll(tokens, name)
		parseDiags = pd

		if flags.astJSON {
			dumpASTJSON(nodes)
		}
		if flags.ast {
			dumpAST(nodes)
		}
	}
	diags = append(diags, parseDiags...)

	ignored := 0
	kept := make([]diagnostic.Diagnostic, 0, len(diags))
	for _, d := range diags {
		if disabled[d.Rule] {
			ignored++
			continue
		}
		kept = append(kept, d)
		if err := cfg.RunHook(d); err != nil {
			log.Warn("configuration hook failed", zap.String("rule", d.Rule.Name()), zap.Error(err))
		}
	}

	if len(kept) != 0 && !flags.silent {
		colorBlue.Fprintf(os.Stdout, "%s\n", centerBanner(name))
		for i, d := range kept {
			diagnostic.Render(os.Stdout, d, content, tokens)
			if i+1 != len(kept) {
				fmt.Println()
			}
		}
	}

	return fileResult{name: name, errors: len(kept), ignoredErrors: ignored}
}

func dumpASTJSON(nodes []ast.Node) {
	projected := make([]any, 0, len(nodes))
	for _, n := range nodes {
		projected = append(projected, n.Project())
	}
	out, err := json.MarshalIndent(projected, "", "  ")
	if err != nil {
		return
	}
	fmt.Println(string(out))
}

func dumpAST(nodes []ast.Node) {
	for _, n := range nodes {
		fmt.Printf("%#v\n", n)
	}
}

func countVerified(results []fileResult) int {
	n := 0
	for _, r := range results {
		if r.errors == 0 {
			n++
		}
	}
	return n
}

func printSummary(results []fileResult) {
	colorBlue.Println(centerBanner("Summary"))
	for _, r := range results {
		marker, markerColor := "[+]", colorGreen
		if r.errors != 0 {
			marker, markerColor = "[-]", colorRed
		}
		markerColor.Print(marker)
		fmt.Printf(" %s:\n", r.name)

		errColor := colorGreen
		if r.errors != 0 {
			errColor = colorRed
		}
		errColor.Printf("    %d Error(s) detected\n", r.errors)

		ignoredColor := colorGreen
		if r.ignoredErrors != 0 {
			ignoredColor = colorYellow
		}
		ignoredColor.Printf("    %d Error(s) ignored\n", r.ignoredErrors)
	}
	fmt.Println()
	colorBlue.Print("=>")
	verified := countVerified(results)
	fmt.Printf(" %d/%d Files verified successfully, %d verification failed.\n",
		verified, len(results), len(results)-verified)
}

func centerBanner(title string) string {
	label := fmt.Sprintf(" %s ", title)
	const width = 72
	if len(label) >= width {
		return label
	}
	pad := width - len(label)
	left := pad / 2
	right := pad - left
	return strings.Repeat("=", left) + label + strings.Repeat("=", right)
}
