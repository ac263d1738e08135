package timeclock

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

// Columns declared on user_profiles by scripts/seed. The admin feed queries
// join worker display data from this table; referencing a column that does
// not exist only fails at query time (SQLSTATE 42703), which the in-memory
// fakes never exercise.
var userProfileColumns = map[string]bool{
	"id":            true,
	"email":         true,
	"password_hash": true,
	"full_name":     true,
	"phone":         true,
	"role":          true,
	"created_at":    true,
	"updated_at":    true,
}

func TestFeedQueriesReferenceExistingProfileColumns(t *testing.T) {
	colRef := regexp.MustCompile(`\bup\.([a-z_]+)`)
	for name, query := range map[string]string{
		"recent": recentEntriesQuery,
		"open":   openEntriesQuery,
	} {
		for _, match := range colRef.FindAllStringSubmatch(query, -1) {
			require.Truef(t, userProfileColumns[match[1]],
				"%s feed query references unknown user_profiles column %q", name, match[1])
		}
		require.Contains(t, query, "JOIN user_profiles up ON te.worker_id = up.id")
	}
}
