package git

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initRepository(t *testing.T, remoteURL string) string {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	if remoteURL != "" {
		_, err = repo.CreateRemote(&config.RemoteConfig{Name: "origin", URLs: []string{remoteURL}})
		require.NoError(t, err)
	}
	return dir
}

func TestCollectRepositoryMetadata(t *testing.T) {
	dir := initRepository(t, "https://github.com/acme/shop.git")
	sub := filepath.Join(dir, "services", "web")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	md, err := CollectRepositoryMetadata(sub)
	require.NoError(t, err)

	assert.Equal(t, "shop", md.RepositoryName)
	require.NotNil(t, md.RemoteURL)
	assert.Equal(t, "https://github.com/acme/shop.git", *md.RemoteURL)

	wantRoot, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	gotRoot, err := filepath.EvalSymlinks(md.RepoRootFolder)
	require.NoError(t, err)
	assert.Equal(t, wantRoot, gotRoot)

	assert.Nil(t, md.CommitHash, "a repository without commits has no HEAD")
}

func TestCollectRepositoryMetadataWithoutRemote(t *testing.T) {
	md, err := CollectRepositoryMetadata(initRepository(t, ""))
	require.NoError(t, err)
	assert.Empty(t, md.RepositoryName)
	assert.Nil(t, md.RemoteURL)
}

func TestCollectRepositoryMetadataNotRepository(t *testing.T) {
	_, err := CollectRepositoryMetadata(t.TempDir())
	assert.ErrorIs(t, err, ErrNotRepository)

	_, err = CollectRepositoryMetadata("")
	assert.Error(t, err)
}

func TestRepositoryName(t *testing.T) {
	testCases := map[string]string{
		"https://github.com/acme/shop.git": "shop",
		"git@github.com:acme/shop.git":     "shop",
		"local-name":                       "local-name",
	}
	for remote, want := range testCases {
		t.Run(remote, func(t *testing.T) {
			assert.Equal(t, want, RepositoryName(remote))
		})
	}
}
