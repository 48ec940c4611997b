package platform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsDevRunUnderGoTest(t *testing.T) {
	assert.True(t, IsDevRun())
}

func TestResolvePath(t *testing.T) {
	sandbox := filepath.Join(os.TempDir(), DevDirName)
	inTemp := t.TempDir()

	tests := []struct {
		name    string
		path    string
		sandbox bool
		want    string
	}{
		{name: "empty without sandbox", path: "", sandbox: false, want: "."},
		{name: "kept without sandbox", path: "/srv/app/prefs", sandbox: false, want: "/srv/app/prefs"},
		{name: "temp path trusted", path: inTemp, sandbox: true, want: inTemp},
		{name: "absolute path redirected", path: "/srv/app/prefs", sandbox: true, want: filepath.Join(sandbox, "prefs")},
		{name: "relative path redirected", path: "data/prefs.db", sandbox: true, want: filepath.Join(sandbox, "prefs.db")},
		{name: "current dir redirected", path: ".", sandbox: true, want: filepath.Join(sandbox, "default")},
		{name: "traversal collapsed", path: "../../etc", sandbox: true, want: filepath.Join(sandbox, "etc")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolvePath(tt.path, tt.sandbox))
		})
	}
}
