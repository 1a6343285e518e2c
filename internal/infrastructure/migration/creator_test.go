package migration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMigration(t *testing.T) {
	t.Run("creates an up and down pair", func(t *testing.T) {
		dir := t.TempDir()
		mf, err := CreateMigration(dir, "add payment source", "Add source column to payments")
		require.NoError(t, err)

		assert.Len(t, mf.Version, 14)
		assert.True(t, strings.HasSuffix(mf.UpPath, "_add_payment_source.up.sql"), mf.UpPath)
		assert.True(t, strings.HasSuffix(mf.DownPath, "_add_payment_source.down.sql"), mf.DownPath)

		up, err := os.ReadFile(mf.UpPath)
		require.NoError(t, err)
		assert.Contains(t, string(up), "add payment source")
		assert.Contains(t, string(up), "Add source column to payments")

		down, err := os.ReadFile(mf.DownPath)
		require.NoError(t, err)
		assert.Contains(t, string(down), "Rollback")
	})

	t.Run("creates the directory when missing", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "migrations")
		_, err := CreateMigration(dir, "init ledger", "")
		require.NoError(t, err)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"add payment source", "add_payment_source"},
		{"Add-Credit-Snapshots", "add_credit_snapshots"},
		{"v2 schema!!", "v2_schema"},
		{"  spaced  out  ", "spaced_out"},
		{"UPPER_case_MIX", "upper_case_mix"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeName(tt.in), tt.in)
	}
}

func TestListMigrations(t *testing.T) {
	t.Run("missing directory yields an empty list", func(t *testing.T) {
		migrations, err := ListMigrations(filepath.Join(t.TempDir(), "absent"))
		require.NoError(t, err)
		assert.Empty(t, migrations)
	})

	t.Run("lists each pair once", func(t *testing.T) {
		dir := t.TempDir()
		_, err := CreateMigration(dir, "init ledger", "")
		require.NoError(t, err)

		// stray files that are not up migrations are skipped
		require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("notes"), 0644))

		migrations, err := ListMigrations(dir)
		require.NoError(t, err)
		require.Len(t, migrations, 1)
		assert.True(t, strings.HasSuffix(migrations[0], "_init_ledger"))
	})
}
