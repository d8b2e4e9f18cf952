// Package mdcsv converts markdown record listings into CSV.
//
// A record starts at a "## Heading" line. The lines that follow until the next
// heading contribute fields, either as "- **Key:** value" bullets or as plain
// "Key: value" lines. Sections without fields are dropped.
package mdcsv

import (
	"bufio"
	"encoding/csv"
	"errors"
	"io"
	"regexp"
	"strings"
)

// NameColumn is the header of the column that holds each record's heading
const NameColumn = "nombre"

var ErrNoRecords = errors.New("no records found")

var (
	headingRe  = regexp.MustCompile(`^##\s+(.+?)\s*#*\s*$`)
	bulletRe   = regexp.MustCompile(`^\s*[-*+]\s+(.*)$`)
	keyValueRe = regexp.MustCompile(`^(?:\*\*|__)?([^:*]+?)(?::\s*(?:\*\*|__)|(?:\*\*|__)\s*:|:)\s*(.*)$`)
	emphasisRe = regexp.MustCompile("\\*\\*(.+?)\\*\\*|__(.+?)__|\\*(.+?)\\*|`(.+?)`")
)

// Record is one heading and its fields
type Record struct {
	Name   string
	Fields map[string]string
}

// Document is the parsed input. Keys holds every field key in first-seen order.
type Document struct {
	Keys    []string
	Records []Record
}

// Parse reads a markdown document.
func Parse(r io.Reader) (*Document, error) {
	doc := &Document{}
	seen := map[string]bool{}

	var current *Record
	flush := func() {
		if current != nil && len(current.Fields) > 0 {
			doc.Records = append(doc.Records, *current)
		}
		current = nil
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if m := headingRe.FindStringSubmatch(line); m != nil {
			flush()
			current = &Record{Name: StripEmphasis(m[1]), Fields: map[string]string{}}
			continue
		}
		if current == nil {
			continue
		}

		body := strings.TrimSpace(line)
		if m := bulletRe.FindStringSubmatch(line); m != nil {
			body = m[1]
		}
		key, value, ok := splitField(body)
		if !ok {
			continue
		}
		if key == NameColumn {
			continue
		}
		if !seen[key] {
			seen[key] = true
			doc.Keys = append(doc.Keys, key)
		}
		current.Fields[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()
	return doc, nil
}

func splitField(s string) (string, string, bool) {
	if s == "" || strings.HasPrefix(s, "#") {
		return "", "", false
	}
	m := keyValueRe.FindStringSubmatch(s)
	if m == nil {
		return "", "", false
	}
	key := strings.TrimSpace(StripEmphasis(m[1]))
	if key == "" || strings.HasPrefix(m[2], "//") {
		return "", "", false
	}
	return key, strings.TrimSpace(StripEmphasis(m[2])), true
}

// StripEmphasis removes markdown bold, italic and code markers.
func StripEmphasis(s string) string {
	for {
		next := emphasisRe.ReplaceAllStringFunc(s, func(match string) string {
			for _, group := range emphasisRe.FindStringSubmatch(match)[1:] {
				if group != "" {
					return group
				}
			}
			return match
		})
		if next == s {
			return strings.TrimSpace(s)
		}
		s = next
	}
}

// WriteCSV writes doc with the record name as the first column.
func WriteCSV(w io.Writer, doc *Document, delimiter rune) error {
	if len(doc.Records) == 0 {
		return ErrNoRecords
	}
	cw := csv.NewWriter(w)
	if delimiter != 0 {
		cw.Comma = delimiter
	}

	header := append([]string{NameColumn}, doc.Keys...)
	if err := cw.Write(header); err != nil {
		return err
	}
	row := make([]string, len(header))
	for _, rec := range doc.Records {
		row[0] = rec.Name
		for i, key := range doc.Keys {
			row[i+1] = rec.Fields[key]
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Convert parses r and writes the CSV to w, returning the record count.
func Convert(r io.Reader, w io.Writer, delimiter rune) (int, error) {
	doc, err := Parse(r)
	if err != nil {
		return 0, err
	}
	if err := WriteCSV(w, doc, delimiter); err != nil {
		return 0, err
	}
	return len(doc.Records), nil
}
