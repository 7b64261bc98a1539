package export

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/echomeet/core/internal/modules/meetings"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	slugStripPattern    = regexp.MustCompile(`[^a-z0-9]+`)
	multiBlankPattern   = regexp.MustCompile(`\n{3,}`)
	trailingWSPattern   = regexp.MustCompile(`[ \t]+\n`)
	collapsedWSPattern  = regexp.MustCompile(`[ \t]{2,}`)
	markdownRenderer    = goldmark.New(goldmark.WithExtensions(extension.GFM))
	defaultFolderLayout = "2006-01-02"
)

// slugify lowercases a title and reduces it to hyphen-separated ascii.
func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugStripPattern.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "untitled"
	}
	if len(s) > 60 {
		s = strings.Trim(s[:60], "-")
	}
	return s
}

// folderName derives the bulk sub-archive folder for one meeting. Two
// meetings sharing date, slug, and id prefix will collide; this mirrors
// what users already have on disk and is not deduplicated.
func folderName(m *meetings.Meeting) string {
	idPrefix := m.ID
	if len(idPrefix) > 8 {
		idPrefix = idPrefix[:8]
	}
	return fmt.Sprintf("%s-%s-%s", m.Date.UTC().Format(defaultFolderLayout), slugify(m.Title), idPrefix)
}

// cleanTranscript normalizes whitespace: trims line ends, collapses runs
// of spaces, and caps consecutive blank lines at one.
func cleanTranscript(raw string) string {
	s := strings.ReplaceAll(raw, "\r\n", "\n")
	s = trailingWSPattern.ReplaceAllString(s, "\n")
	s = collapsedWSPattern.ReplaceAllString(s, " ")
	s = multiBlankPattern.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// renderSummaryMarkdown builds the human-readable summary document with
// the full transcript appended.
func renderSummaryMarkdown(m *meetings.Meeting) string {
	var b strings.Builder
	s := m.Summary

	fmt.Fprintf(&b, "# %s\n\n", m.Title)
	fmt.Fprintf(&b, "**Date:** %s  \n", m.Date.UTC().Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "**Duration:** %s\n\n", formatDuration(m.Duration))

	if len(m.Speakers) > 0 {
		b.WriteString("**Speakers:** ")
		names := make([]string, 0, len(m.Speakers))
		for _, sp := range m.Speakers {
			names = append(names, sp.Name)
		}
		b.WriteString(strings.Join(names, ", "))
		b.WriteString("\n\n")
	}

	if s != nil {
		b.WriteString("## Executive Summary\n\n")
		b.WriteString(s.Executive)
		b.WriteString("\n\n")

		if len(s.KeyPoints) > 0 {
			b.WriteString("## Key Points\n\n")
			for _, kp := range s.KeyPoints {
				fmt.Fprintf(&b, "- %s\n", kp)
			}
			b.WriteString("\n")
		}
		if len(s.ActionItems) > 0 {
			b.WriteString("## Action Items\n\n")
			for _, it := range s.ActionItems {
				line := fmt.Sprintf("- [ ] %s", it.Task)
				if it.Owner != "" {
					line += fmt.Sprintf(" (owner: %s", it.Owner)
					if it.Deadline != nil && *it.Deadline != "" {
						line += ", due " + *it.Deadline
					}
					line += ")"
				} else if it.Deadline != nil && *it.Deadline != "" {
					line += fmt.Sprintf(" (due %s)", *it.Deadline)
				}
				b.WriteString(line + "\n")
			}
			b.WriteString("\n")
		}
		if len(s.Decisions) > 0 {
			b.WriteString("## Decisions\n\n")
			for _, d := range s.Decisions {
				fmt.Fprintf(&b, "- %s\n", d)
			}
			b.WriteString("\n")
		}
		if len(s.Questions) > 0 {
			b.WriteString("## Open Questions\n\n")
			for _, q := range s.Questions {
				fmt.Fprintf(&b, "- %s\n", q)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("## Full Transcript\n\n")
	b.WriteString(cleanTranscript(m.Transcript))
	b.WriteString("\n")
	return b.String()
}

// renderSummaryHTML converts the markdown summary document to HTML.
func renderSummaryHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := markdownRenderer.Convert([]byte(markdown), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderBulkReadme(count int, now time.Time) string {
	var b strings.Builder
	b.WriteString("EchoMeet Export\n")
	b.WriteString("===============\n\n")
	fmt.Fprintf(&b, "Exported at: %s\n", now.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "Meetings:    %d\n\n", count)
	b.WriteString("Each folder contains one meeting:\n")
	fmt.Fprintf(&b, "  %s       raw audio (only for non-archived meetings)\n", audioFileName)
	fmt.Fprintf(&b, "  %s   cleaned plain-text transcript\n", transcriptFileName)
	fmt.Fprintf(&b, "  %s       human-readable summary with transcript\n", summaryMDFileName)
	fmt.Fprintf(&b, "  %s     rendered summary document\n", summaryHTMLFileName)
	fmt.Fprintf(&b, "  %s    structured metadata used for re-import\n", metadataFileName)
	return b.String()
}

func formatDuration(seconds int) string {
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	m := seconds / 60
	s := seconds % 60
	if m < 60 {
		return fmt.Sprintf("%dm %02ds", m, s)
	}
	return fmt.Sprintf("%dh %02dm", m/60, m%60)
}

func formatSize(size int64) string {
	switch {
	case size >= 1<<20:
		return fmt.Sprintf("%.2f MB", float64(size)/(1<<20))
	case size >= 1<<10:
		return fmt.Sprintf("%.2f KB", float64(size)/(1<<10))
	default:
		return fmt.Sprintf("%d B", size)
	}
}
