// Package ndjson splits newline-delimited JSON exports into individual
// per-document files.
package ndjson

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// maxLineSize bounds a single NDJSON line; Kibana dashboards with inlined
// panels can run well past bufio's 64KB default.
const maxLineSize = 32 * 1024 * 1024

// Document is one saved object parsed from an NDJSON export. Lines are
// independent; no cross-line relationship is assumed.
type Document struct {
	// Line is the 1-based line number in the source file
	Line int
	// Title is attributes.title, empty when absent
	Title string
	// Data is the decoded object
	Data map[string]interface{}
}

// LineError records a line that failed to decode
type LineError struct {
	Line int
	Err  error
}

func (e LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// Decode reads newline-delimited JSON from r, decoding each non-blank line
// independently. Decode failures don't abort the scan; they are returned
// alongside the documents that did parse.
func Decode(r io.Reader) ([]Document, []LineError, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	var docs []Document
	var errs []LineError

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var data map[string]interface{}
		if err := json.Unmarshal([]byte(text), &data); err != nil {
			errs = append(errs, LineError{Line: line, Err: err})
			continue
		}

		docs = append(docs, Document{
			Line:  line,
			Title: titleOf(data),
			Data:  data,
		})
	}
	if err := scanner.Err(); err != nil {
		return docs, errs, fmt.Errorf("failed to read input: %w", err)
	}

	return docs, errs, nil
}

func titleOf(data map[string]interface{}) string {
	attrs, ok := data["attributes"].(map[string]interface{})
	if !ok {
		return ""
	}
	title, _ := attrs["title"].(string)
	return title
}

var filenameSanitizer = strings.NewReplacer(" ", "_", "/", "_")

// Filename derives the output filename (without extension) for a document.
// Position is the 1-based order among successfully parsed documents and is
// used when the document has no title.
func Filename(title string, position int) string {
	if title == "" {
		return fmt.Sprintf("document_%d", position)
	}
	return filenameSanitizer.Replace(title)
}

// SplitFile reads the NDJSON file at path and writes each parsed document
// as pretty-printed JSON to outDir, named after the document title. Parse
// failures are logged and dropped. Same-titled documents overwrite each
// other (last write wins).
func SplitFile(path, outDir string, log zerolog.Logger) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open export file: %w", err)
	}
	defer f.Close()

	docs, lineErrs, err := Decode(f)
	if err != nil {
		return 0, err
	}
	for _, lineErr := range lineErrs {
		log.Warn().Str("file", path).Int("line", lineErr.Line).
			Err(lineErr.Err).Msg("skipping unparseable line")
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return 0, fmt.Errorf("failed to create output directory: %w", err)
	}

	for i, doc := range docs {
		name := Filename(doc.Title, i+1) + ".json"
		dest := filepath.Join(outDir, name)

		if _, err := os.Stat(dest); err == nil {
			log.Debug().Str("file", dest).Msg("overwriting existing document")
		}

		pretty, err := json.MarshalIndent(doc.Data, "", "  ")
		if err != nil {
			return i, fmt.Errorf("failed to encode %s: %w", name, err)
		}
		if err := os.WriteFile(dest, append(pretty, '\n'), 0o644); err != nil {
			return i, fmt.Errorf("failed to write %s: %w", dest, err)
		}

		log.Debug().Str("file", dest).Int("line", doc.Line).Msg("wrote document")
	}

	return len(docs), nil
}
