package service

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// IgnoreFilter matches report paths against gitignore-style patterns
type IgnoreFilter struct {
	matcher  *ignore.GitIgnore
	patterns int
}

// NewIgnoreFilter compiles the inline patterns together with the lines of
// ignoreFile. A missing ignore file is not an error.
func NewIgnoreFilter(patterns []string, ignoreFile string) (*IgnoreFilter, error) {
	lines := append([]string{}, patterns...)

	if ignoreFile != "" {
		data, err := os.ReadFile(ignoreFile)
		switch {
		case err == nil:
			lines = append(lines, strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")...)
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read ignore file %s: %w", ignoreFile, err)
		}
	}

	count := 0
	for _, line := range lines {
		if l := strings.TrimSpace(line); l != "" && !strings.HasPrefix(l, "#") {
			count++
		}
	}

	return &IgnoreFilter{
		matcher:  ignore.CompileIgnoreLines(lines...),
		patterns: count,
	}, nil
}

// Empty reports whether the filter has no effective pattern
func (f *IgnoreFilter) Empty() bool {
	return f == nil || f.patterns == 0
}

// Match reports whether path is ignored. Windows separators are normalised first.
func (f *IgnoreFilter) Match(path string) bool {
	if f.Empty() {
		return false
	}
	return f.matcher.MatchesPath(strings.ReplaceAll(path, `\`, "/"))
}
