// Package driver wires source files to the inferencer and back. The
// lexer/parser that turns Escalier source text into an *ast.Program is an
// external collaborator (spec.md §1) and is not part of this module;
// Parse is the seam a host registers a real parser into. Without one
// registered, every file is reported as a parser error, matching the
// CLI's documented exit code 2.
package driver

import (
	"fmt"
	"os"

	"github.com/escalier-lang/escalier/internal/ast"
	"github.com/escalier-lang/escalier/internal/checkerr"
	"github.com/escalier-lang/escalier/internal/config"
	"github.com/escalier-lang/escalier/internal/infer"
)

// FileResult is one file's worth of driver output.
type FileResult struct {
	Path        string
	SourceBytes int64
	Report      *checkerr.Report
}

// Parse turns source bytes into a Program. Replace this with a real
// parser's entry point; the zero value reports every file unparseable.
var Parse func(path string, src []byte) (*ast.Program, error) = parseUnavailable

func parseUnavailable(path string, _ []byte) (*ast.Program, error) {
	return nil, fmt.Errorf("no parser registered for %s", path)
}

// CheckFile reads, parses, and type-checks one source file.
func CheckFile(path string, _ config.CheckerOptions) *FileResult {
	src, err := os.ReadFile(path)
	if err != nil {
		report := checkerr.NewReport()
		report.Add(&checkerr.TypeError{Kind: checkerr.ParserError, Message: err.Error()})
		return &FileResult{Path: path, Report: report}
	}

	prog, err := Parse(path, src)
	if err != nil {
		report := checkerr.NewReport()
		report.Add(&checkerr.TypeError{Kind: checkerr.ParserError, Message: err.Error()})
		return &FileResult{Path: path, SourceBytes: int64(len(src)), Report: report}
	}

	report := CheckProgram(prog)
	return &FileResult{Path: path, SourceBytes: int64(len(src)), Report: report}
}

// CheckProgram runs a fresh Checker over an already-parsed program. Used
// directly by tests and by any host that builds its own AST.
func CheckProgram(prog *ast.Program) *checkerr.Report {
	return infer.New().CheckProgram(prog)
}
