package store

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	t.Run("creates file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "srcid.db")
		s, err := Open(path)
		require.NoError(t, err)
		defer s.Close()
		assert.FileExists(t, path)
	})

	t.Run("reopen keeps tables", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "srcid.db")
		for i := 0; i < 3; i++ {
			s, err := Open(path)
			require.NoError(t, err, "open #%d", i)
			require.NoError(t, s.Close())
		}
		s, err := Open(path)
		require.NoError(t, err)
		defer s.Close()
		for _, table := range []string{"sessions", "sources", "resolutions"} {
			assert.Contains(t, listNames(t, s.db, "table", table), table)
		}
	})

	t.Run("bad directory", func(t *testing.T) {
		_, err := Open("/nonexistent/dir/srcid.db")
		assert.Error(t, err)
	})

	t.Run("in memory", func(t *testing.T) {
		s, err := Open(":memory:")
		require.NoError(t, err)
		defer s.Close()
		v, err := s.userVersion()
		require.NoError(t, err)
		assert.Equal(t, schemaVersion(), v)
	})
}

func TestClose_NilDB(t *testing.T) {
	assert.NoError(t, (&Store{}).Close())
}

func TestOpen_AppliesPragmas(t *testing.T) {
	s := createTestStore(t)

	want := map[string]string{
		"journal_mode": "wal",
		"synchronous":  "1",
		"busy_timeout": "5000",
		"foreign_keys": "1",
	}
	for name, value := range want {
		var got string
		require.NoError(t, s.db.QueryRow("PRAGMA "+name).Scan(&got))
		assert.Equal(t, value, got, name)
	}
}

func TestSchema_SourcesColumns(t *testing.T) {
	s := createTestStore(t)

	rows, err := s.db.Query("SELECT name FROM pragma_table_info('sources')")
	require.NoError(t, err)
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		columns = append(columns, name)
	}
	require.NoError(t, rows.Err())
	assert.ElementsMatch(t, []string{"session_id", "id", "kind", "url", "content_hash", "links", "seq"}, columns)
}

func TestSchema_SourceNeedsSession(t *testing.T) {
	s := createTestStore(t)

	_, err := s.db.Exec(`INSERT INTO sources (session_id, id, kind, links, seq)
		VALUES ('missing', '1', 'scriptSource', '[]', 1)`)
	assert.Error(t, err, "foreign key to sessions is enforced")
}

func TestMigrate_FromUnversioned(t *testing.T) {
	path := filepath.Join(t.TempDir(), "srcid.db")

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec(schemaSQL)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	v, err := s.userVersion()
	require.NoError(t, err)
	assert.Equal(t, len(migrations), v)

	assert.Contains(t, listNames(t, s.db, "index", "sources"), "idx_sources_session_seq")
	assert.Contains(t, listNames(t, s.db, "index", "resolutions"), "idx_resolutions_session")
}

func TestMigrate_ResumesFromPartialVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "srcid.db")

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec(schemaSQL)
	require.NoError(t, err)
	_, err = db.Exec(migrations[0])
	require.NoError(t, err)
	_, err = db.Exec("PRAGMA user_version = 1")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	assert.Contains(t, listNames(t, s.db, "index", "resolutions"), "idx_resolutions_session")
}

// listNames returns sqlite_master names of objects of typ attached to table.
func listNames(t *testing.T, db *sql.DB, typ, table string) []string {
	t.Helper()

	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type = ? AND tbl_name = ?", typ, table)
	require.NoError(t, err)
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		names = append(names, name)
	}
	require.NoError(t, rows.Err())
	return names
}
