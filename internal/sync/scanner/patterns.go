package scanner

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	sperrors "github.com/input-output-hk/sitepublish/errors"
)

// PatternMatcher filters relative keys with include and exclude globs.
// The same matcher is applied to local and remote keys so excluded objects are
// neither uploaded nor deleted.
type PatternMatcher struct {
	include []string
	exclude []string
}

// NewPatternMatcher validates the patterns and returns a matcher for them.
func NewPatternMatcher(include, exclude []string) (*PatternMatcher, error) {
	if errs := ValidatePatterns(include); len(errs) > 0 {
		return nil, errs[0]
	}
	if errs := ValidatePatterns(exclude); len(errs) > 0 {
		return nil, errs[0]
	}
	return &PatternMatcher{
		include: include,
		exclude: exclude,
	}, nil
}

// Empty reports whether the matcher accepts every key.
func (pm *PatternMatcher) Empty() bool {
	return pm == nil || (len(pm.include) == 0 && len(pm.exclude) == 0)
}

// Match reports whether relPath should take part in the pass.
// Excludes take precedence; with no include patterns everything not excluded matches.
func (pm *PatternMatcher) Match(relPath string) bool {
	if pm.Empty() {
		return true
	}

	for _, pattern := range pm.exclude {
		if matchesPattern(relPath, pattern) {
			return false
		}
	}

	if len(pm.include) == 0 {
		return true
	}

	for _, pattern := range pm.include {
		if matchesPattern(relPath, pattern) {
			return true
		}
	}
	return false
}

// matchesPattern checks relPath against a single glob.
// A trailing slash selects everything beneath the named directory.
func matchesPattern(relPath, pattern string) bool {
	if dir, ok := strings.CutSuffix(pattern, "/"); ok {
		return relPath == dir || strings.HasPrefix(relPath, dir+"/") ||
			doublestar.MatchUnvalidated(dir+"/**", relPath)
	}
	return doublestar.MatchUnvalidated(pattern, relPath)
}

// ValidatePatterns validates that the given patterns are syntactically correct.
func ValidatePatterns(patterns []string) []error {
	var errs []error

	for i, pattern := range patterns {
		if pattern == "" {
			errs = append(errs, &PatternError{Pattern: pattern, Index: i, Err: fmt.Errorf("empty pattern")})
			continue
		}
		if !doublestar.ValidatePattern(strings.TrimSuffix(pattern, "/")) {
			errs = append(errs, &PatternError{Pattern: pattern, Index: i, Err: doublestar.ErrBadPattern})
		}
	}

	return errs
}

// PatternError represents an error with a pattern.
type PatternError struct {
	Pattern string
	Index   int
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid pattern at index %d '%s': %v", e.Index, e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

// Is reports PatternError as an invalid-pattern failure.
func (e *PatternError) Is(target error) bool {
	return target == sperrors.ErrInvalidPattern
}
