// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package export

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/tejzpr/moodlog-mcp/internal/mood"
	"gopkg.in/yaml.v3"
)

var (
	// unsafeFileChars matches characters dropped from entry file names
	unsafeFileChars = regexp.MustCompile(`[^a-z0-9-]`)
	// multiDash collapses runs of dashes
	multiDash = regexp.MustCompile(`-+`)
)

// idHashBytes is the length of the id digest appended to entry file names
const idHashBytes = 4

// Markdown renders an entry as YAML frontmatter followed by its notes
func Markdown(e *mood.Entry) (string, error) {
	var buf bytes.Buffer

	buf.WriteString("---\n")
	frontmatter, err := yaml.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("failed to marshal frontmatter: %w", err)
	}
	buf.Write(frontmatter)
	buf.WriteString("---\n\n")

	if e.Notes != "" {
		buf.WriteString(e.Notes)
		buf.WriteString("\n")
	}
	return buf.String(), nil
}

// ParseMarkdown reads an entry written by Markdown. Only the blank separator
// line and the final newline are stripped from the notes.
func ParseMarkdown(content string) (*mood.Entry, error) {
	frontmatter, body, err := splitFrontmatter(content)
	if err != nil {
		return nil, fmt.Errorf("failed to split frontmatter: %w", err)
	}
	if frontmatter == "" {
		return nil, fmt.Errorf("missing frontmatter")
	}

	var e mood.Entry
	if err := yaml.Unmarshal([]byte(frontmatter), &e); err != nil {
		return nil, fmt.Errorf("failed to parse frontmatter: %w", err)
	}
	body = strings.TrimPrefix(body, "\n")
	e.Notes = strings.TrimSuffix(body, "\n")
	return &e, nil
}

// splitFrontmatter splits markdown content into frontmatter and body. The
// body is returned verbatim, starting right after the closing delimiter line.
func splitFrontmatter(content string) (string, string, error) {
	content = strings.TrimLeft(content, " \t\r\n")
	if !strings.HasPrefix(content, "---") {
		return "", content, nil
	}

	start := strings.IndexByte(content, '\n') + 1
	if start == 0 {
		return "", content, fmt.Errorf("frontmatter not properly closed")
	}

	for offset := start; offset < len(content); {
		line, next := content[offset:], len(content)
		if end := strings.IndexByte(line, '\n'); end != -1 {
			line, next = line[:end], offset+end+1
		}
		if strings.TrimSpace(line) == "---" {
			return content[start:offset], content[next:], nil
		}
		offset = next
	}
	return "", content, fmt.Errorf("frontmatter not properly closed")
}

// EntryFilename names the archive file of an entry: <day>-<slug>-<hash>.md.
// The day is taken in loc, the slug is the id reduced to lowercase letters,
// digits and dashes, and the hash is a digest of the raw id so that ids
// sharing a slug still get distinct files.
func EntryFilename(e *mood.Entry, loc *time.Location) string {
	day := "undated"
	if t, err := e.Time(loc); err == nil {
		day = t.In(loc).Format("2006-01-02")
	}

	id := strings.ToLower(e.ID)
	id = unsafeFileChars.ReplaceAllString(id, "-")
	id = multiDash.ReplaceAllString(id, "-")
	id = strings.Trim(id, "-")
	if id == "" {
		id = "entry"
	}
	sum := sha256.Sum256([]byte(e.ID))
	return fmt.Sprintf("%s-%s-%s.md", day, id, hex.EncodeToString(sum[:idHashBytes]))
}
