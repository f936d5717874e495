package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sieve/internal/criteria"
	"github.com/roach88/sieve/internal/querysql"
	"github.com/roach88/sieve/internal/schema"
	"github.com/roach88/sieve/internal/store"
)

// SearchOptions holds flags for the search command.
type SearchOptions struct {
	*RootOptions
	Schema string // CUE schema directory; empty introspects the database
}

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SearchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "search <db-path> <entity> <criteria.yaml>",
		Short: "Run a criteria document against a SQLite database",
		Long: `Run a criteria YAML document against a SQLite database and print the
matching rows.

The entity's column map comes from --schema when given; otherwise the
table named after the entity is introspected. The query always uses the
SQLite dialect.

Examples:
  sieve search ./app.db People ./people-search.yaml
  sieve search ./app.db Person ./people-search.yaml --schema ./schema --format json`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd.Context(), opts, args[0], args[1], args[2], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Schema, "schema", "s", "", "CUE schema directory (default: introspect the database)")

	return cmd
}

func runSearch(ctx context.Context, opts *SearchOptions, dbPath, entity, criteriaPath string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if err := requirePath("database", dbPath); err != nil {
		return formatter.Fail(err)
	}
	set, err := LoadCriteria(criteriaPath)
	if err != nil {
		return formatter.Fail(err)
	}

	st, err := store.Open(dbPath,
		store.WithLogger(opts.logger(formatter.GetErrWriter())),
		store.WithDialect(querysql.SQLite),
	)
	if err != nil {
		return formatter.Fail(&CommandError{Code: ErrCodeQueryFailed, Message: fmt.Sprintf("opening database: %v", err), Err: err})
	}
	defer st.Close()

	var provider schema.Provider
	if opts.Schema != "" {
		static, err := LoadSchema(opts.Schema)
		if err != nil {
			return outputCompileError(formatter, err)
		}
		provider = static
	} else {
		provider = &schema.SQLiteIntrospector{DB: st.DB()}
		formatter.VerboseLog("Introspecting table %s", entity)
	}

	out, err := store.Search(ctx, st, schema.NewCache(provider), entity, set, store.ScanRecord)
	if err != nil {
		if ErrorCode(err) == ErrCodeGeneric {
			err = &CommandError{Code: ErrCodeQueryFailed, Message: err.Error(), Err: err}
		}
		return formatter.Fail(err)
	}

	if formatter.Format == "json" {
		return formatter.Success(out)
	}
	return outputSearchText(formatter, out)
}

func outputSearchText(formatter *OutputFormatter, out *criteria.SearchResult[store.Record]) error {
	w := formatter.Writer
	for _, rec := range out.Results {
		line, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(line))
	}

	fmt.Fprintf(w, "\n%d row(s)", len(out.Results))
	if out.TotalCount != nil {
		fmt.Fprintf(w, " of %d", *out.TotalCount)
	}
	fmt.Fprintln(w)
	return nil
}
