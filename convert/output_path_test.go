package convert

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"tocidx/config"
	"tocidx/state"
)

func setupTestEnvForOutputPath(t *testing.T, transliterate bool, template string) *state.LocalEnv {
	t.Helper()
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	cfg.Document.FileNameTransliterate = transliterate
	cfg.Document.OutputNameTemplate = template

	return &state.LocalEnv{
		Log: zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1))),
		Cfg: cfg,
	}
}

func TestBuildOutputPath(t *testing.T) {
	dst := t.TempDir()
	v := Values{Title: "Über Zellen", Source: "Zellbiologie Band 2", Pages: 10}

	tests := []struct {
		name          string
		transliterate bool
		template      string
		want          string
	}{
		{"default name", false, "", filepath.Join(dst, "Zellbiologie Band 2-indexed.pdf")},
		{"default transliterated", true, "", filepath.Join(dst, "zellbiologie-band-2-indexed.pdf")},
		{"template", false, "{{ .Title }}", filepath.Join(dst, "Über Zellen.pdf")},
		{"template transliterated", true, "{{ .Title }}", filepath.Join(dst, "uber-zellen.pdf")},
		{"template with subdirectory", false, "{{ .Pages }}/{{ .Source }}", filepath.Join(dst, "10", "Zellbiologie Band 2.pdf")},
		{"template with extension", false, "{{ .Source }}.pdf", filepath.Join(dst, "Zellbiologie Band 2.pdf")},
		{"template escaping upwards", false, "../../{{ .Source }}", filepath.Join(dst, "Zellbiologie Band 2.pdf")},
		{"broken template falls back", false, "{{ .Nope }}", filepath.Join(dst, "Zellbiologie Band 2-indexed.pdf")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestEnvForOutputPath(t, tt.transliterate, tt.template)
			if got := buildOutputPath(v, dst, env); got != tt.want {
				t.Errorf("buildOutputPath() = %q, want %q", got, tt.want)
			}
		})
	}

	t.Run("file destination", func(t *testing.T) {
		env := setupTestEnvForOutputPath(t, false, "{{ .Title }}")
		file := filepath.Join(dst, "exact.PDF")
		if got := buildOutputPath(v, file, env); got != file {
			t.Errorf("buildOutputPath() = %q, want %q", got, file)
		}
	})

	t.Run("directory named like pdf", func(t *testing.T) {
		env := setupTestEnvForOutputPath(t, false, "")
		dir := filepath.Join(dst, "out.pdf")
		if err := os.Mkdir(dir, 0755); err != nil {
			t.Fatal(err)
		}
		want := filepath.Join(dir, "Zellbiologie Band 2-indexed.pdf")
		if got := buildOutputPath(v, dir, env); got != want {
			t.Errorf("buildOutputPath() = %q, want %q", got, want)
		}
	})
}

func TestSplitAndCleanPath(t *testing.T) {
	sep := string(os.PathSeparator)
	tests := []struct {
		in   string
		want []string
	}{
		{"a" + sep + "b" + sep + "c", []string{"a", "b", "c"}},
		{sep + "abs" + sep + "x" + sep, []string{"abs", "x"}},
		{".." + sep + "x", []string{"x"}},
		{"a" + sep + sep + "b", []string{"a", "b"}},
		{"", []string{}},
	}
	for _, tt := range tests {
		if got := splitAndCleanPath(tt.in); !slices.Equal(got, tt.want) {
			t.Errorf("splitAndCleanPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
