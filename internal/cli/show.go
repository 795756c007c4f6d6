package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/srcid/internal/session"
	"github.com/roach88/srcid/internal/store"
)

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
	Database string
	Session  string
	ID       string // optional - print one source only
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the resolution of a stored session",
		Long: `Restore a session from the SQLite database and print its resolution.

The cached resolution is reused when the stored batch has not changed.

Examples:
  srcid show --db ./srcid.db --session 0190f5c2-...
  srcid show --db ./srcid.db --session 0190f5c2-... --id o1 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from config)")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session id (required)")
	_ = cmd.MarkFlagRequired("session")
	cmd.Flags().StringVar(&opts.ID, "id", "", "print only this source")

	return cmd
}

func runShow(opts *ShowOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := opts.formatter(cmd)

	st, err := store.Open(opts.database(opts.Database))
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, fmt.Sprintf("failed to open database: %v", err), nil)
	}
	defer st.Close()

	sess, err := session.Restore(ctx, st, opts.Session, session.WithLogger(opts.logger(cmd.ErrOrStderr())))
	if errors.Is(err, store.ErrSessionNotFound) {
		return formatter.Fail(ExitCommandError, ErrCodeNoSession, fmt.Sprintf("session %q not found", opts.Session), nil)
	}
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil)
	}
	formatter.VerboseLog("Restored %d source(s), cached resolution: %t", sess.Len(), !sess.Stale())

	res, err := sess.Resolution()
	if err != nil {
		return rejectBatch(formatter, err)
	}
	return outputResolution(formatter, sess.ID(), res, opts.ID)
}

// SessionsResult is the JSON payload of the sessions command.
type SessionsResult struct {
	Sessions []store.SessionInfo `json:"sessions"`
	Total    int                 `json:"total"`
}

// NewSessionsCommand creates the sessions command.
func NewSessionsCommand(rootOpts *RootOptions) *cobra.Command {
	var database string

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List stored sessions",
		Long: `List the sessions in the SQLite database, oldest first, with their
source counts.

Examples:
  srcid sessions --db ./srcid.db
  srcid sessions --db ./srcid.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessions(rootOpts, database, cmd)
		},
	}

	cmd.Flags().StringVar(&database, "db", "", "path to SQLite database (default from config)")

	return cmd
}

func runSessions(opts *RootOptions, database string, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := opts.formatter(cmd)

	st, err := store.Open(opts.database(database))
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, fmt.Sprintf("failed to open database: %v", err), nil)
	}
	defer st.Close()

	sessions, err := st.ListSessions(ctx)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil)
	}

	if formatter.Format == "json" {
		return formatter.Success(SessionsResult{Sessions: sessions, Total: len(sessions)})
	}

	w := formatter.Writer
	if len(sessions) == 0 {
		fmt.Fprintln(w, "No sessions found in database.")
		return nil
	}
	for _, info := range sessions {
		fmt.Fprintf(w, "%s  %d source(s)\n", info.ID, info.Sources)
	}
	return nil
}
