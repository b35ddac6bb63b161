package convert

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"tocidx/config"
	"tocidx/state"
)

const outputExt = ".pdf"

// buildOutputPath returns output file name. When dst names a PDF file it is
// used as is, otherwise dst is a directory and file name comes from either
// default naming scheme or user-defined template. Name segments are cleaned
// and, if requested, transliterated.
func buildOutputPath(v Values, dst string, env *state.LocalEnv) string {
	if isFileDestination(dst) {
		return dst
	}

	defaultFile := buildDefaultFileName(v.Source, env)
	if env.Cfg.Document.OutputNameTemplate == "" {
		return filepath.Join(dst, defaultFile)
	}

	expandedName := expandOutputNameTemplate(v, env)
	if expandedName == "" {
		// fallback to default name if template expansion failed
		return filepath.Join(dst, defaultFile)
	}
	return assemblePathWithSubdirs(dst, expandedName, env)
}

func isFileDestination(dst string) bool {
	if !strings.EqualFold(filepath.Ext(dst), outputExt) {
		return false
	}
	fi, err := os.Stat(dst)
	return err != nil || !fi.IsDir()
}

func buildDefaultFileName(source string, env *state.LocalEnv) string {
	baseName := source + "-indexed"
	if env.Cfg.Document.FileNameTransliterate {
		baseName = slug.Make(baseName)
	}
	return config.CleanFileName(baseName) + outputExt
}

func expandOutputNameTemplate(v Values, env *state.LocalEnv) string {
	expandedName, err := expandTemplate(config.OutputNameTemplateFieldName, env.Cfg.Document.OutputNameTemplate, v)
	if err != nil {
		env.Log.Warn("Unable to prepare output filename", zap.Error(err))
		return ""
	}
	return strings.TrimSpace(filepath.FromSlash(expandedName))
}

// assemblePathWithSubdirs takes an expanded template name (which may contain
// path separators for subdirectories) and assembles it into a full output path,
// cleaning and transliterating segments as needed
func assemblePathWithSubdirs(outDir, expandedName string, env *state.LocalEnv) string {
	pathSegments := splitAndCleanPath(expandedName)
	if len(pathSegments) == 0 {
		return filepath.Join(outDir, buildDefaultFileName("", env))
	}

	last := strings.TrimSuffix(pathSegments[len(pathSegments)-1], outputExt)
	dirParts := make([]string, 0, len(pathSegments)+1)
	dirParts = append(dirParts, outDir)
	for _, segment := range pathSegments[:len(pathSegments)-1] {
		dirParts = append(dirParts, cleanPathSegment(segment, env))
	}
	dirParts = append(dirParts, cleanPathSegment(last, env)+outputExt)
	return filepath.Join(dirParts...)
}

// splitAndCleanPath splits path into segments dropping empty ones and
// anything trying to go up.
func splitAndCleanPath(path string) []string {
	segments := make([]string, 0, 8)
	path = strings.TrimSuffix(path, string(os.PathSeparator))
	for path != "" {
		head, tail := filepath.Split(path)
		if tail != "" && tail != "." && tail != ".." {
			segments = slices.Insert(segments, 0, tail)
		}
		next := strings.TrimSuffix(head, string(os.PathSeparator))
		if next == path {
			break
		}
		path = next
	}
	return segments
}

func cleanPathSegment(segment string, env *state.LocalEnv) string {
	if env.Cfg.Document.FileNameTransliterate {
		segment = slug.Make(segment)
	}
	return config.CleanFileName(segment)
}
