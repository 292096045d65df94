package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandPath(t *testing.T) {
	t.Setenv("SAVE2_TEST_DIR", "/data")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "/var/db/save2.db", "/var/db/save2.db"},
		{"env var", "$SAVE2_TEST_DIR/save2.db", "/data/save2.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.in))
		})
	}
}

func TestExpandPathTilde(t *testing.T) {
	got := ExpandPath("~/data/save2.db")
	assert.False(t, filepath.IsAbs("~"), "sanity")
	assert.NotContains(t, got, "~")
	assert.True(t, filepath.IsAbs(got))
}

func TestDefaultDatabasePath(t *testing.T) {
	got := DefaultDatabasePath()
	assert.Contains(t, got, "save2.db")
}
