package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/sieve/internal/querysql"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Schema string // CUE schema directory
	Output string // output file path
}

// CompiledParam is one bound parameter in compile output.
type CompiledParam struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// CompilationResult holds the compiled queries for one criteria document.
type CompilationResult struct {
	Entity      string          `json:"entity"`
	Dialect     string          `json:"dialect"`
	SQL         string          `json:"sql"`
	Params      []CompiledParam `json:"params"`
	CountSQL    string          `json:"count_sql,omitempty"`
	CountParams []CompiledParam `json:"count_params,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <entity> <criteria.yaml>",
		Short: "Compile a criteria document to SQL",
		Long: `Compile a criteria YAML document against an entity's column map and
print the results query, its parameters and, when paging asks for one,
the count query.

Examples:
  sieve compile Person ./people-search.yaml --schema ./schema
  sieve compile Person ./people-search.yaml --schema ./schema --dialect postgres
  sieve compile Person ./people-search.yaml --schema ./schema --format json -o out.json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd.Context(), opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Schema, "schema", "s", "schema", "CUE schema directory")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the JSON result to a file")

	return cmd
}

func runCompile(ctx context.Context, opts *CompileOptions, entity, criteriaPath string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	dialect, err := querysql.ParseDialect(opts.Dialect)
	if err != nil {
		return formatter.Fail(err)
	}

	provider, err := LoadSchema(opts.Schema)
	if err != nil {
		return outputCompileError(formatter, err)
	}
	formatter.VerboseLog("Loaded %d entit(ies) from %s", len(provider.Entities()), opts.Schema)

	m, err := provider.Resolve(ctx, entity)
	if err != nil {
		return outputCompileError(formatter, err)
	}

	set, err := LoadCriteria(criteriaPath)
	if err != nil {
		return outputCompileError(formatter, err)
	}
	formatter.VerboseLog("Compiling %d criteria field(s) for %s (%s)", len(set.Fields()), m.Entity, dialect.Name())

	results, count, err := querysql.NewCompiler(dialect).Compile(m, set)
	if err != nil {
		return outputCompileError(formatter, err)
	}

	result := &CompilationResult{
		Entity:  m.Entity,
		Dialect: dialect.Name(),
		SQL:     results.Text,
		Params:  compiledParams(results.Params),
	}
	if count != nil {
		result.CountSQL = count.Text
		result.CountParams = compiledParams(count.Params)
	}

	if opts.Output != "" {
		if err := writeResultToFile(result, opts.Output); err != nil {
			return formatter.Fail(&CommandError{Code: ErrCodeWriteFailed, Message: fmt.Sprintf("writing output file: %v", err), Err: err})
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintln(w, results.String())
	if count != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, count.String())
	}
	if opts.Output != "" {
		fmt.Fprintf(w, "\nWrote compiled query to %s\n", opts.Output)
	}
	return nil
}

func compiledParams(params []querysql.Param) []CompiledParam {
	out := make([]CompiledParam, len(params))
	for i, p := range params {
		out[i] = CompiledParam{Name: p.Name, Value: querysql.FormatValue(p.Value)}
	}
	return out
}

// outputCompileError reports a load or compile failure, with its CUE
// position in text mode.
func outputCompileError(formatter *OutputFormatter, err error) error {
	if pos := errorPos(err); pos.IsValid() && formatter.Format != "json" {
		fmt.Fprintf(formatter.Writer, "%s:%d:%d\n", pos.Filename(), pos.Line(), pos.Column())
	}
	return formatter.Fail(err)
}

func writeResultToFile(result *CompilationResult, filename string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}

	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}
