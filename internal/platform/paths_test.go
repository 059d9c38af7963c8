package platform

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func envOf(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func TestPathsFor(t *testing.T) {
	tests := []struct {
		name     string
		goos     string
		env      map[string]string
		dataBase string
		want     Paths
	}{
		{
			name:     "linux xdg overrides",
			goos:     "linux",
			env:      map[string]string{"XDG_CONFIG_HOME": "/xdg/config", "XDG_DATA_HOME": "/xdg/data"},
			dataBase: "/home/me/.local/share",
			want: Paths{
				ConfigPath:   filepath.Join("/xdg/config", "achiever", "config.toml"),
				DataDir:      filepath.Join("/xdg/data", "achiever"),
				DBPath:       filepath.Join("/xdg/data", "achiever", "achiever.db"),
				DocumentsDir: filepath.Join("/xdg/data", "achiever", "documents"),
				LogDir:       filepath.Join("/xdg/data", "achiever", "log"),
			},
		},
		{
			name:     "windows local appdata holds data",
			goos:     "windows",
			env:      map[string]string{"LOCALAPPDATA": "/local"},
			dataBase: "/roaming",
			want: Paths{
				ConfigPath:   filepath.Join("/cfg", "achiever", "config.toml"),
				DataDir:      filepath.Join("/local", "achiever"),
				DBPath:       filepath.Join("/local", "achiever", "achiever.db"),
				DocumentsDir: filepath.Join("/local", "achiever", "documents"),
				LogDir:       filepath.Join("/local", "achiever", "log"),
			},
		},
		{
			name:     "darwin ignores xdg",
			goos:     "darwin",
			env:      map[string]string{"XDG_DATA_HOME": "/ignored"},
			dataBase: "/support",
			want: Paths{
				ConfigPath:   filepath.Join("/cfg", "achiever", "config.toml"),
				DataDir:      filepath.Join("/support", "achiever"),
				DBPath:       filepath.Join("/support", "achiever", "achiever.db"),
				DocumentsDir: filepath.Join("/support", "achiever", "documents"),
				LogDir:       filepath.Join("/support", "achiever", "log"),
			},
		},
	}
	for _, tc := range tests {
		got, err := PathsFor(tc.goos, envOf(tc.env), "/cfg", tc.dataBase, "achiever")
		if err != nil {
			t.Fatalf("%s: PathsFor() error = %v", tc.name, err)
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Fatalf("%s: PathsFor() mismatch (-want +got):\n%s", tc.name, diff)
		}
	}
}

func TestPathsForRejectsEmptyInputs(t *testing.T) {
	if _, err := PathsFor("linux", nil, "", "/data", "achiever"); err == nil {
		t.Fatal("expected error for empty config base")
	}
	if _, err := PathsFor("linux", nil, "/cfg", "/data", "  "); err == nil {
		t.Fatal("expected error for empty app name")
	}
}

func TestOptionsDirName(t *testing.T) {
	cases := map[Options]string{
		{}:                                  "achiever",
		{DevMode: true}:                     "achiever-dev",
		{AppName: " goals ", DevMode: true}: "goals-dev",
	}
	for opts, want := range cases {
		if got := opts.dirName(); got != want {
			t.Fatalf("dirName(%#v) = %q, want %q", opts, got, want)
		}
	}
}

func TestDefaultPathsWithOptionsDevMode(t *testing.T) {
	p, err := DefaultPathsWithOptions(Options{DevMode: true})
	if err != nil {
		t.Fatalf("DefaultPathsWithOptions() error = %v", err)
	}
	if filepath.Base(p.DBPath) != "achiever-dev.db" {
		t.Fatalf("expected dev db name, got %q", p.DBPath)
	}
	if filepath.Dir(p.DocumentsDir) != p.DataDir || filepath.Dir(p.LogDir) != p.DataDir {
		t.Fatalf("expected documents and log dirs under %q, got %#v", p.DataDir, p)
	}
}
