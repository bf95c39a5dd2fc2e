package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"driftwatch-io/driftwatch/pkg/dcl/parser"
	"driftwatch-io/driftwatch/pkg/policy/engine"
)

// DirectoryLoader loads .dcl rule files from a directory tree.
type DirectoryLoader struct {
	dir    string
	logger *slog.Logger
}

// NewDirectoryLoader creates a loader over the given directory.
func NewDirectoryLoader(dir string, logger *slog.Logger) *DirectoryLoader {
	if logger == nil {
		logger = slog.Default().With("component", "policy.source")
	}
	return &DirectoryLoader{dir: dir, logger: logger}
}

// Load enumerates and parses every .dcl file under the directory. Files
// are visited in sorted path order so rule IDs are stable across loads.
// Per-file failures land in the result's Errors; only an unusable
// directory fails the load itself.
func (l *DirectoryLoader) Load(ctx context.Context) (*LoadResult, error) {
	if l.dir == "" {
		return nil, &engine.EvaluationError{Message: "no policy source configured"}
	}

	info, err := os.Stat(l.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to stat policy directory %q: %w", l.dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("policy source %q is not a directory", l.dir)
	}

	var paths []string
	err = filepath.Walk(l.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if filepath.Ext(path) != ".dcl" {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk policy directory %q: %w", l.dir, err)
	}
	sort.Strings(paths)

	result := &LoadResult{}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		file, err := loadFile(path)
		if err != nil {
			l.logger.Warn("failed to load policy file, skipping",
				"path", path,
				"error", err,
			)
			result.Errors = append(result.Errors, &LoadError{Path: path, Err: err})
			continue
		}
		result.Loaded = append(result.Loaded, *file)
	}

	l.logger.Info("loaded policy files",
		"dir", l.dir,
		"files", len(result.Loaded),
		"failed", len(result.Errors),
		"rules", len(result.AllRules()),
	)

	return result, nil
}

// loadFile reads and parses one rule file, assigning rule IDs of the form
// "<file-base>:<index>".
func loadFile(path string) (*PolicyFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	rules, err := parser.ParseFile(string(data))
	if err != nil {
		return nil, err
	}

	name := strings.TrimSuffix(filepath.Base(path), ".dcl")
	for i, rule := range rules {
		rule.ID = fmt.Sprintf("%s:%d", name, i)
	}

	return &PolicyFile{
		Path:  path,
		Name:  name,
		Rules: rules,
	}, nil
}
