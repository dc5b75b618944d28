package filestore

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	dir := t.TempDir()
	s, err := New(filepath.Join(dir, "nested"))
	require.NoError(t, err)

	_, ok, err := s.Get("accessToken")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set("accessToken", "tok123"))
	require.NoError(t, s.Set("refreshToken", "ref123"))

	info, err := os.Stat(s.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	// a second Store over the same dir sees the values, as after a restart
	s2, err := New(filepath.Join(dir, "nested"))
	require.NoError(t, err)
	v, ok, err := s2.Get("accessToken")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok123", v)

	require.NoError(t, s2.Delete("accessToken", "missing"))
	_, ok, _ = s.Get("accessToken")
	assert.False(t, ok)
	v, _, _ = s.Get("refreshToken")
	assert.Equal(t, "ref123", v)

	require.NoError(t, s.Delete("refreshToken"))
	_, err = os.Stat(s.Path())
	assert.True(t, os.IsNotExist(err), "empty store should remove its file")
}

func TestStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)
	require.NoError(t, ioutil.WriteFile(s.Path(), []byte("{lol"), 0o600))

	if _, _, err := s.Get("accessToken"); err == nil {
		t.Errorf("Get() error = nil, want decode error")
	}
}
