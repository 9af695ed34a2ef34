package fileurl

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectKey(t *testing.T) {
	tests := []struct {
		prefix, key, want string
	}{
		{"", "groceries", "groceries"},
		{"notes/", "groceries", "notes/groceries"},
		{"/notes", "trip photo", "notes/trip photo"},
		{"notes", "../../etc/passwd", "notes/etc/passwd"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ObjectKey(tt.prefix, tt.key))
	}
}

func TestCreatePathAndIsExist(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "a", "b", "config.yaml")
	assert.False(t, IsExist(dst))
	require.NoError(t, CreatePath(dst, 0o755))
	assert.True(t, IsDir(filepath.Dir(dst)))
	assert.Equal(t, "x/", PathSuffixCheckAdd("x", "/"))
	assert.Equal(t, "x/", PathSuffixCheckAdd("x/", "/"))
}
