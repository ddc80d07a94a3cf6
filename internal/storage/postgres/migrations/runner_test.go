package migrations

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationFilesAreOrdered(t *testing.T) {
	files, err := migrationFiles()
	require.NoError(t, err)
	require.NotEmpty(t, files)
	assert.Equal(t, "0001_init.sql", files[0])
	assert.IsNonDecreasing(t, files)

	content, err := fs.ReadFile(FS, files[0])
	require.NoError(t, err)
	for _, constraint := range []string{"users_email_key", "invitations_token_key", "invitations_one_pending", "family_members_one_primary"} {
		assert.Contains(t, string(content), constraint)
	}
}
