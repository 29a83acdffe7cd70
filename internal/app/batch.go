package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/findstorm/internal/find/controller"
	"github.com/dshills/findstorm/internal/find/match"
	"github.com/dshills/findstorm/internal/logging"
)

// BatchOptions describes a find/replace over many files.
type BatchOptions struct {
	// Root is the directory Pattern is matched under.
	Root string
	// Pattern is a doublestar glob such as "**/*.go".
	Pattern     string
	Query       string
	Replacement string
	Toggles     controller.Toggles
	// Write saves changed files. Without it the run only counts matches.
	Write bool
	// Concurrency defaults to GOMAXPROCS.
	Concurrency int
}

// FileResult is the outcome for one file.
type FileResult struct {
	Path    string
	Matches int
	Written bool
	Err     error
}

// BatchReport summarizes a batch run. Files are sorted by path.
type BatchReport struct {
	Files   []FileResult
	Matches int
	Changed int
	Failed  int
}

// Batch runs a replace-all session on every file matching opts.Pattern.
// Each file gets its own controller, so files are processed concurrently.
// Per-file failures are recorded in the report; the returned error is only
// set for problems with the run itself.
func Batch(ctx context.Context, opts BatchOptions, logger *logging.Logger) (*BatchReport, error) {
	if opts.Pattern == "" {
		return nil, ErrNoPattern
	}
	if !doublestar.ValidatePattern(opts.Pattern) {
		return nil, doublestar.ErrBadPattern
	}
	if logger == nil {
		logger = logging.NullLogger
	}
	logger = logger.WithComponent("batch")

	root := opts.Root
	if root == "" {
		root = "."
	}
	if opts.Query == "" {
		return nil, ErrNoQuery
	}
	if _, err := match.Find("", match.Params{
		Query:           opts.Query,
		Regex:           opts.Toggles.Regex,
		CaseInsensitive: !opts.Toggles.CaseSensitive,
		WholeWord:       opts.Toggles.WholeWord,
	}); err != nil {
		return nil, err
	}

	paths, err := doublestar.Glob(os.DirFS(root), opts.Pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	results := make([]FileResult, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	g.SetLimit(limit)

	for i, rel := range paths {
		i := i
		path := filepath.Join(root, filepath.FromSlash(rel))
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = replaceInFile(ctx, path, opts)
			if err := results[i].Err; err != nil {
				logger.WithError(err).Warn("skipping %s", path)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &BatchReport{Files: results}
	for _, r := range results {
		report.Matches += r.Matches
		if r.Written {
			report.Changed++
		}
		if r.Err != nil {
			report.Failed++
		}
	}
	logger.Info("%d matches in %d files, %d changed", report.Matches, len(results), report.Changed)
	return report, nil
}

func replaceInFile(ctx context.Context, path string, opts BatchOptions) FileResult {
	res := FileResult{Path: path}

	doc, err := LoadFile(path)
	if err != nil {
		res.Err = err
		return res
	}

	ed := NewEditor(doc)
	ctrl := controller.New(ed, ed, controller.WithToggles(opts.Toggles))
	if err := ctrl.StartWith(ctx, false, opts.Query); err != nil {
		res.Err = err
		return res
	}
	defer ctrl.End(ctx)

	st := ctrl.Status()
	res.Matches = st.Matches
	if st.Err != nil {
		res.Err = st.Err
		return res
	}
	if !opts.Write || res.Matches == 0 {
		return res
	}

	if err := ctrl.ToggleReplaceMode(ctx); err != nil {
		res.Err = err
		return res
	}
	if opts.Replacement != "" {
		if err := ctrl.InsertText(ctx, opts.Replacement); err != nil {
			res.Err = err
			return res
		}
	}
	if err := ctrl.Replace(ctx, true); err != nil {
		res.Err = err
		return res
	}
	if err := doc.Save(); err != nil {
		res.Err = err
		return res
	}
	res.Written = true
	return res
}

// IsBinary reports whether err came from skipping a binary file.
func IsBinary(err error) bool {
	return errors.Is(err, ErrBinaryFile)
}
