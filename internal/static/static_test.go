package static

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayoisaiah/lift/plan"
)

func TestInstallKeepsExistingFiles(t *testing.T) {
	fsys := afero.NewMemMapFs()
	dir := "/data/lift"

	require.NoError(t, installTo(fsys, dir))

	target := filepath.Join(dir, "plans", "full_body.yml")

	ok, err := afero.Exists(fsys, target)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, afero.WriteFile(fsys, target, []byte("edited"), 0o600))
	require.NoError(t, installTo(fsys, dir))

	b, err := afero.ReadFile(fsys, target)
	require.NoError(t, err)
	assert.Equal(t, "edited", string(b))
}

func TestEmbeddedPlansAreValid(t *testing.T) {
	names, err := Plans()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"full_body.yml", "push_pull_legs.yml"}, names)

	for _, name := range names {
		f, err := Open("plans/" + name)
		require.NoError(t, err)

		p, err := plan.LoadYAML(f)
		f.Close()

		require.NoError(t, err, name)
		assert.NotEmpty(t, p.Days, name)
	}
}
