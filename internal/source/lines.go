package source

import (
	"bufio"
	"io"
	"os"
	"strings"

	"deedjoin/internal/diag"
)

const maxLineBytes = 1024 * 1024

var entities = strings.NewReplacer("&#62;", ">", "&#60;", "<")

// ReadLines reads the whole file at path into memory, one entry per line.
// Any failure is returned as a diag.ErrIO error carrying the path.
func ReadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, diag.IO(path, err)
	}
	defer f.Close()

	lines, err := Scan(f)
	if err != nil {
		return nil, diag.IO(path, err)
	}
	return lines, nil
}

// Scan reads all lines from r. A leading UTF-8 byte order mark is dropped.
func Scan(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes) // allow very long lines

	var lines []string
	for scanner.Scan() {
		line := scanner.Text()
		if len(lines) == 0 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}

// DecodeEntities replaces the numeric escapes for '>' and '<' used in
// exported placemark files.
func DecodeEntities(line string) string {
	if !strings.Contains(line, "&#6") {
		return line
	}
	return entities.Replace(line)
}
