package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/srcid/internal/session"
	"github.com/roach88/srcid/internal/store"
)

// IngestOptions holds flags for the ingest command.
type IngestOptions struct {
	*RootOptions
	Database string
	Session  string // optional - new UUIDv7 session when empty
}

// IngestResult is the JSON payload of the ingest command.
type IngestResult struct {
	Session  string `json:"session"`
	Accepted int    `json:"accepted"`
	Skipped  int    `json:"skipped"`
	Sources  int    `json:"sources"`
	Hash     string `json:"hash"`
}

// NewIngestCommand creates the ingest command.
func NewIngestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IngestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "ingest <file>",
		Short: "Append announcements to a stored session",
		Long: `Append the announcements in a batch file to a session in the SQLite
database, resolve the full session and cache the result.

Re-announcing an identical record is skipped. Announcing an existing id
with different content rejects the whole file. When the accumulated batch
does not resolve, the sources are still stored so the session can be fixed
by a later ingest.

Exit codes:
  0 - Announcements stored and session resolved
  1 - Batch rejected
  2 - Command error (unreadable file, database error, etc.)

Examples:
  srcid ingest batch.json --db ./srcid.db
  srcid ingest late.ndjson --db ./srcid.db --session 0190f5c2-...`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from config)")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session id to append to (default: new session)")

	return cmd
}

func runIngest(opts *IngestOptions, path string, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := opts.formatter(cmd)
	logger := opts.logger(cmd.ErrOrStderr())

	anns, err := loadBatch(formatter, path)
	if err != nil {
		return err
	}

	st, err := store.Open(opts.database(opts.Database))
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, fmt.Sprintf("failed to open database: %v", err), nil)
	}
	defer st.Close()

	id := opts.Session
	if id == "" {
		id = opts.newSessionID()
	}
	sess, err := openSession(ctx, st, id, logger)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil)
	}
	formatter.VerboseLog("Session %s holds %d source(s)", id, sess.Len())

	result := IngestResult{Session: id}
	for _, a := range anns {
		before := sess.Len()
		if err := sess.Announce(a); err != nil {
			return rejectBatch(formatter, err)
		}
		if sess.Len() > before {
			result.Accepted++
		} else {
			result.Skipped++
		}
	}

	if err := sess.Persist(ctx, st); err != nil {
		if isResolutionError(err) {
			return rejectBatch(formatter, err)
		}
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil)
	}

	res, err := sess.Resolution()
	if err != nil {
		return rejectBatch(formatter, err)
	}
	result.Sources = res.Len()
	if result.Hash, err = res.Hash(); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "Session %s: %d accepted, %d skipped, %d source(s) total\n",
		result.Session, result.Accepted, result.Skipped, result.Sources)
	return nil
}

// openSession restores id from st, or starts it when st has never seen it.
func openSession(ctx context.Context, st *store.Store, id string, logger *slog.Logger) (*session.Session, error) {
	sess, err := session.Restore(ctx, st, id, session.WithLogger(logger))
	if errors.Is(err, store.ErrSessionNotFound) {
		return session.New(id, session.WithLogger(logger)), nil
	}
	return sess, err
}
