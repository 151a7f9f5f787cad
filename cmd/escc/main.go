// Command escc type-checks Escalier source files.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"golang.org/x/sync/errgroup"

	"github.com/escalier-lang/escalier/internal/cache"
	"github.com/escalier-lang/escalier/internal/checkerr"
	"github.com/escalier-lang/escalier/internal/config"
	"github.com/escalier-lang/escalier/internal/driver"
)

// BackendType is unused by escc itself but kept settable via -ldflags so
// the same build scripts that stamp funxy's BackendType continue to work
// unmodified against this binary.
var BackendType = "check"

func isSourceFile(path string) bool {
	return strings.HasSuffix(path, ".esc")
}

func collectSourceFiles(roots []string) ([]string, error) {
	var files []string
	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", root, err)
		}
		if !info.IsDir() {
			files = append(files, root)
			continue
		}
		err = filepath.Walk(root, func(path string, fi os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !fi.IsDir() && isSourceFile(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

func main() {
	_ = BackendType
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <file|dir>...\n", os.Args[0])
		os.Exit(2)
	}

	var configPath string
	var paths []string
	for _, arg := range os.Args[1:] {
		if strings.HasPrefix(arg, "-config=") {
			configPath = strings.TrimPrefix(arg, "-config=")
			continue
		}
		paths = append(paths, arg)
	}
	if len(paths) == 0 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <file|dir>...\n", os.Args[0])
		os.Exit(2)
	}
	if configPath == "" {
		configPath = ".escalier.yaml"
	}

	opts, err := config.LoadOptions(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "escc: %s\n", err)
		os.Exit(2)
	}

	files, err := collectSourceFiles(paths)
	if err != nil {
		fmt.Fprintf(os.Stderr, "escc: %s\n", err)
		os.Exit(2)
	}

	useColor := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

	store, err := cache.Open(".escalier-cache.db")
	if err != nil {
		fmt.Fprintf(os.Stderr, "escc: opening cache: %s\n", err)
		os.Exit(2)
	}
	defer store.Close()
	ctx := context.Background()

	start := time.Now()
	results := make([]*driver.FileResult, len(files))
	var g errgroup.Group
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			fileStart := time.Now()
			results[i] = driver.CheckFile(f, opts)
			src, _ := os.ReadFile(f)
			entry := cache.Entry{
				Path:        f,
				ContentHash: cache.HashContent(src),
				Diagnostics: len(results[i].Report.Diagnostics),
				CheckedAt:   time.Now(),
				Duration:    time.Since(fileStart),
			}
			return store.Put(ctx, entry)
		})
	}
	if err := g.Wait(); err != nil {
		fmt.Fprintf(os.Stderr, "escc: updating cache: %s\n", err)
	}
	elapsed := time.Since(start)
	cacheEntries, _ := store.Size(ctx)

	exitCode := 0
	var totalBytes int64
	var diagCount int
	for _, res := range results {
		totalBytes += res.SourceBytes
		diagCount += len(res.Report.Diagnostics)
		for _, d := range res.Report.Diagnostics {
			printDiagnostic(res.Path, d, useColor)
			switch {
			case d.Kind == checkerr.ParserError:
				exitCode = 2
			case exitCode < 1 && (d.IsFatal() || (opts.Strict && d.Severity == checkerr.SeverityWarning)):
				exitCode = 1
			}
		}
	}

	fmt.Fprintf(os.Stderr, "escc: checked %s across %d file(s) in %s, %d diagnostic(s), cache holds %d entries\n",
		humanize.Bytes(uint64(totalBytes)), len(files), elapsed.Round(time.Millisecond), diagCount, cacheEntries)

	os.Exit(exitCode)
}

func printDiagnostic(path string, d *checkerr.TypeError, color bool) {
	sev := "error"
	if d.Severity == checkerr.SeverityWarning {
		sev = "warning"
	}
	if color {
		code := "31"
		if sev == "warning" {
			code = "33"
		}
		fmt.Fprintf(os.Stderr, "\033[%sm%s:%s:\033[0m %s: %s\n", code, path, d.Span.Start.String(), sev, d.Error())
		return
	}
	fmt.Fprintf(os.Stderr, "%s:%s: %s: %s\n", path, d.Span.Start.String(), sev, d.Error())
}
