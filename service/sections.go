package service

import (
	"bufio"
	"strings"

	"worker-debrief/entities"
)

// fallbackSectionTitle wraps heading-less markdown so callers never receive
// zero sections for a non-empty debrief.
const fallbackSectionTitle = "Debrief"

// SplitSections derives storage sections from debrief markdown by splitting
// on second-level headings. Each "## Title" starts a section whose content
// runs until the next heading; order is assignment order from 0. Text before
// the first heading, or a document with no headings at all, becomes a section
// under the fallback title.
func SplitSections(markdown string) []entities.DebriefSection {
	trimmed := strings.TrimSpace(markdown)
	if trimmed == "" {
		return nil
	}

	var sections []entities.DebriefSection
	var current *entities.DebriefSection
	var body strings.Builder

	flush := func() {
		if current == nil {
			return
		}
		current.Content = strings.TrimSpace(body.String())
		sections = append(sections, *current)
		current = nil
		body.Reset()
	}

	scanner := bufio.NewScanner(strings.NewReader(trimmed))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if title, ok := headingTitle(line); ok {
			flush()
			current = &entities.DebriefSection{
				Title: title,
				Order: len(sections),
			}
			continue
		}
		if current == nil {
			// Preamble before the first heading.
			current = &entities.DebriefSection{
				Title: fallbackSectionTitle,
				Order: len(sections),
			}
		}
		body.WriteString(line)
		body.WriteByte('\n')
	}
	flush()

	return sections
}

// headingTitle matches exactly second-level markdown headings. "###" and
// deeper stay inside the enclosing section.
func headingTitle(line string) (string, bool) {
	if !strings.HasPrefix(line, "## ") {
		return "", false
	}
	if strings.HasPrefix(line, "###") {
		return "", false
	}
	title := strings.TrimSpace(strings.TrimPrefix(line, "## "))
	if title == "" {
		return "", false
	}
	return title, true
}
