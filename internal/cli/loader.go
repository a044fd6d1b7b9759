package cli

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"cuelang.org/go/cue/token"
	"github.com/bmatcuk/doublestar/v4"

	"github.com/roach88/tpgm/internal/codec"
)

// LoadMode controls how errors are handled during document loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadResult contains the documents loaded for a command.
type LoadResult struct {
	Documents []*codec.Document
	Paths     []string // Path of each document, same order
}

// LoadError represents an error that occurred during document loading.
type LoadError struct {
	Code    string
	Message string
	Path    string    // File the error belongs to, if any
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadDocuments resolves patterns to files and decodes each of them.
// If mode is LoadModeFailFast, returns on first error.
// If mode is LoadModeCollectAll, collects all errors.
func LoadDocuments(patterns []string, mode LoadMode) (*LoadResult, []error) {
	paths, err := ResolvePaths(patterns)
	if err != nil {
		return nil, []error{err}
	}

	var errs []error
	result := &LoadResult{}
	for _, path := range paths {
		doc, err := codec.Load(path)
		if err != nil {
			errs = append(errs, convertDecodeError(err, path))
			if mode == LoadModeFailFast {
				return result, errs
			}
			continue
		}
		result.Documents = append(result.Documents, doc)
		result.Paths = append(result.Paths, path)
	}
	return result, errs
}

// ResolvePaths expands glob patterns (with ** support) and returns the
// matched files sorted and without duplicates. Patterns without glob
// metacharacters must name an existing file.
func ResolvePaths(patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: "no input files"}
	}

	var paths []string
	for _, pattern := range patterns {
		if !hasGlobMeta(pattern) {
			info, err := os.Stat(pattern)
			if err != nil {
				return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("file not found: %s", pattern)}
			}
			if info.IsDir() {
				return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("not a file: %s", pattern)}
			}
			paths = append(paths, pattern)
			continue
		}

		if !doublestar.ValidatePathPattern(pattern) {
			return nil, &LoadError{Code: ErrCodeInvalidInput, Message: fmt.Sprintf("bad pattern %q", pattern)}
		}
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, &LoadError{Code: ErrCodeInvalidInput, Message: fmt.Sprintf("bad pattern %q: %v", pattern, err)}
		}
		if len(matches) == 0 {
			return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("pattern matched no files: %s", pattern)}
		}
		paths = append(paths, matches...)
	}

	slices.Sort(paths)
	return slices.Compact(paths), nil
}

func hasGlobMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

// convertDecodeError converts a codec error to a LoadError with position info.
func convertDecodeError(err error, path string) *LoadError {
	var decodeErr *codec.DecodeError
	if errors.As(err, &decodeErr) {
		msg := decodeErr.Message
		if decodeErr.Path != "" {
			msg = decodeErr.Path + ": " + msg
		}
		return &LoadError{
			Code:    ErrCodeLoadFailed,
			Message: msg,
			Path:    path,
			Pos:     decodeErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeLoadFailed,
		Message: err.Error(),
		Path:    path,
	}
}

// reportLoadErrors prints the first load error and returns the exit error.
func reportLoadErrors(f *OutputFormatter, errs []error) error {
	var loadErr *LoadError
	if !errors.As(errs[0], &loadErr) {
		return f.Fail(ExitCommandError, ErrCodeGeneric, errs[0].Error(), errs[0])
	}
	exitCode := ExitFailure
	if loadErr.Code == ErrCodeNoFiles || loadErr.Code == ErrCodeInvalidInput {
		exitCode = ExitCommandError
	}
	for _, err := range errs[1:] {
		f.VerboseLog("%v", err)
	}
	return f.Fail(exitCode, loadErr.Code, loadErr.Error(), loadErr)
}
