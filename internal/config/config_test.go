package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "disviz.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		env     map[string]string
		want    func(*Config)
		wantErr bool
	}{
		{
			name: "defaults",
			want: func(*Config) {},
		},
		{
			name: "yaml file",
			file: "systemPrefixes: [/opt/sdk/]\nblocksPerPage: 25\nworkers: 2\ndebug: true\n",
			want: func(c *Config) {
				c.SystemPrefixes = []string{"/opt/sdk/"}
				c.BlocksPerPage = 25
				c.Workers = 2
				c.Debug = true
			},
		},
		{
			name: "env overrides file",
			file: "blocksPerPage: 25\n",
			env: map[string]string{
				"DISVIZ_BLOCKS_PER_PAGE": "10",
				"DISVIZ_SYSTEM_PREFIXES": "/usr/:/opt/",
				"DISVIZ_WORKERS":         "3",
			},
			want: func(c *Config) {
				c.BlocksPerPage = 10
				c.SystemPrefixes = []string{"/usr/", "/opt/"}
				c.Workers = 3
			},
		},
		{
			name:    "bad env number",
			env:     map[string]string{"DISVIZ_WORKERS": "many"},
			wantErr: true,
		},
		{
			name:    "invalid page size",
			file:    "blocksPerPage: 0\n",
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			file:    "blocksPerPage: [\n",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{"DISVIZ_BLOCKS_PER_PAGE", "DISVIZ_SYSTEM_PREFIXES", "DISVIZ_WORKERS"} {
				t.Setenv(k, tt.env[k])
			}
			path := ""
			if tt.file != "" {
				path = writeConfig(t, tt.file)
			}

			got, err := Load(path)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Load() = %+v, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			want := Default()
			tt.want(&want)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("Load() (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLayoutOptions(t *testing.T) {
	cfg := Default()
	cfg.Workers = 4
	opts := cfg.LayoutOptions()
	if opts.Workers != 4 || len(opts.SystemPrefixes) != 1 || opts.SystemPrefixes[0] != "/usr/" {
		t.Errorf("LayoutOptions() = %+v", opts)
	}
}
