// Package transcript pulls the SQL typed at a database client prompt out of a
// captured console session.
package transcript

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

// DefaultPrompt is the interactive prompt of the mysql client.
const DefaultPrompt = "mysql>"

// OutputSuffix is appended to the transcript path to name the extracted script.
const OutputSuffix = ".sql"

var continuationPattern = regexp.MustCompile(`^\s*->\s?(.*?)\s*$`)

// Extractor matches prompt lines in a transcript and captures the command text.
type Extractor struct {
	pattern *regexp.Regexp

	// Continuation also captures "    -> ..." lines that follow a prompt line,
	// which is how the mysql client echoes multi-line statements.
	Continuation bool
}

// Result summarises a file extraction.
type Result struct {
	InputPath  string
	OutputPath string
	Statements int
}

// NewExtractor returns an Extractor for the given prompt. An empty prompt falls
// back to DefaultPrompt.
func NewExtractor(prompt string) *Extractor {
	if prompt == "" {
		prompt = DefaultPrompt
	}
	return &Extractor{
		pattern: regexp.MustCompile(`^` + regexp.QuoteMeta(prompt) + `\s*(.*?)\s*$`),
	}
}

// Match reports whether line starts with the prompt and returns the text after it.
func (e *Extractor) Match(line string) (string, bool) {
	m := e.pattern.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Extract copies the command text of every prompt line in r to w, one per line,
// and returns the number of lines written.
func (e *Extractor) Extract(r io.Reader, w io.Writer) (int, error) {
	// Lines are unbounded: pasted INSERT batches can run to megabytes.
	br := bufio.NewReader(r)
	bw := bufio.NewWriter(w)
	count := 0
	inStatement := false

	for {
		line, readErr := br.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			if err := bw.Flush(); err != nil {
				return count, err
			}
			return count, fmt.Errorf("failed to read transcript: %w", readErr)
		}
		if line == "" && readErr != nil {
			break
		}
		line = strings.TrimRight(line, "\r\n")

		content, ok := e.Match(line)
		if !ok && e.Continuation && inStatement {
			if m := continuationPattern.FindStringSubmatch(line); m != nil {
				content, ok = m[1], true
			}
		}
		if ok {
			inStatement = true
			if _, err := bw.WriteString(content + "\n"); err != nil {
				return count, err
			}
			count++
		} else {
			inStatement = false
		}

		if readErr != nil {
			break
		}
	}

	if err := bw.Flush(); err != nil {
		return count, err
	}
	return count, nil
}

// ExtractFile runs Extract from inPath into outPath, overwriting outPath. An
// empty outPath means OutputPath(inPath).
func (e *Extractor) ExtractFile(inPath, outPath string) (Result, error) {
	if outPath == "" {
		outPath = OutputPath(inPath)
	}

	//nolint:gosec // G304: transcript path is supplied by the operator
	in, err := os.Open(inPath)
	if err != nil {
		return Result{}, err
	}
	defer in.Close()

	//nolint:gosec // G304: output path is derived from operator input
	out, err := os.Create(outPath)
	if err != nil {
		return Result{}, err
	}

	count, err := e.Extract(in, out)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return Result{}, err
	}

	return Result{InputPath: inPath, OutputPath: outPath, Statements: count}, nil
}

// OutputPath returns the default script path for a transcript.
func OutputPath(inPath string) string {
	return inPath + OutputSuffix
}
