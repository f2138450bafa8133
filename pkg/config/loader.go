package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/stubkit/stubd/pkg/stub"
)

// ErrNoFiles is returned when a data pattern matches no stub documents.
var ErrNoFiles = errors.New("no stub documents found")

// LoadFromFile reads and parses one stub document. Environment references of
// the form ${VAR} or ${VAR:-default} are expanded before parsing.
func LoadFromFile(path string) ([]*stub.Lifecycle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", path)
		}
		if os.IsPermission(err) {
			return nil, fmt.Errorf("permission denied: %s", path)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	lifecycles, err := Parse([]byte(ExpandEnvVars(string(data))), filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return lifecycles, nil
}

// LoadFromPattern loads every document matched by pattern, in sorted path
// order, and concatenates their lifecycles. The pattern may be a file, a
// directory (all *.yaml, *.yml and *.json files below it) or a glob with ** support.
func LoadFromPattern(pattern string) ([]*stub.Lifecycle, error) {
	files, err := MatchFiles(pattern)
	if err != nil {
		return nil, err
	}

	var result []*stub.Lifecycle
	for _, f := range files {
		lifecycles, err := LoadFromFile(f)
		if err != nil {
			return nil, err
		}
		result = append(result, lifecycles...)
	}
	return result, nil
}

// MatchFiles resolves a data pattern to the sorted list of documents it
// names.
func MatchFiles(pattern string) ([]string, error) {
	if pattern == "" {
		return nil, ErrNoFiles
	}

	if !hasMeta(pattern) {
		info, err := os.Stat(pattern)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", pattern, err)
		}
		if !info.IsDir() {
			return []string{pattern}, nil
		}
		pattern = filepath.Join(pattern, "**", "*.{yaml,yml,json}")
	}

	matches, err := expandGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("expanding glob pattern: %w", err)
	}

	files := matches[:0]
	for _, m := range matches {
		if info, err := os.Stat(m); err == nil && !info.IsDir() {
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoFiles, pattern)
	}

	// Sort for deterministic catalog order.
	sort.Strings(files)
	return files, nil
}

// BaseDir returns the directory a data pattern is rooted at, for watching.
func BaseDir(pattern string) string {
	if !hasMeta(pattern) {
		if info, err := os.Stat(pattern); err == nil && info.IsDir() {
			return pattern
		}
		return filepath.Dir(pattern)
	}
	base, _ := doublestar.SplitPattern(filepath.ToSlash(pattern))
	return filepath.FromSlash(base)
}

func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

// expandGlob expands a glob pattern to a list of matching file paths.
// Uses doublestar for ** and {a,b} support, filepath.Glob otherwise.
func expandGlob(pattern string) ([]string, error) {
	if strings.Contains(pattern, "**") || strings.Contains(pattern, "{") {
		return doublestar.FilepathGlob(pattern)
	}
	return filepath.Glob(pattern)
}

// ResolvePath resolves target relative to base. Absolute paths and paths
// starting with ~/ are not joined with base.
func ResolvePath(base, target string) string {
	if filepath.IsAbs(target) {
		return target
	}
	if strings.HasPrefix(target, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, target[2:])
		}
	}
	return filepath.Join(base, target)
}

// envVarPattern matches ${VAR_NAME} or ${VAR_NAME:-default}
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// ExpandEnvVars expands environment variables in the input string.
// Supports ${VAR_NAME} and ${VAR_NAME:-default} syntax.
func ExpandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		sub := envVarPattern.FindStringSubmatch(match)
		if val := os.Getenv(sub[1]); val != "" {
			return val
		}
		return sub[2]
	})
}
