package story

import (
	"regexp"
	"strings"

	"github.com/rcliao/lessonforge/internal/model"
)

var (
	verseBrackets     = regexp.MustCompile(`[\[(]\d{1,3}(?::\d{1,3})?[\])]`)
	superscriptDigits = regexp.MustCompile(`[\x{2070}\x{00b9}\x{00b2}\x{00b3}\x{2074}-\x{2079}]+`)
	leadingVerseNum   = regexp.MustCompile(`^\d{1,3}\s+`)
	translationTag    = regexp.MustCompile(`\s*\((?:ESV|NIV|KJV|NKJV|NLT|NASB|CSB|HCSB|RSV|NRSV|MSG|AMP|WEB|ASV)\)`)
	translationSuffix = regexp.MustCompile(`\s+(?:ESV|NIV|KJV|NKJV|NLT|NASB|CSB|HCSB|RSV|NRSV|MSG|AMP|WEB|ASV)$`)
	bulletPrefix      = regexp.MustCompile(`^(?:[\x{2022}*\x{2013}-]|\d{1,2}[.)])\s+`)
	whitespaceRun     = regexp.MustCompile(`\s+`)
)

// NarrationText returns the text a voice should read for page. Link targets
// and the cover subtitle are never read.
func NarrationText(page model.Page) string {
	var pieces []string
	if !page.Continued {
		pieces = append(pieces, page.Title)
	}
	switch page.Type {
	case model.PageList:
		pieces = append(pieces, page.Items...)
	default:
		pieces = append(pieces, page.Text)
	}

	var kept []string
	for _, piece := range pieces {
		for _, line := range strings.Split(piece, "\n") {
			if cleaned := cleanLine(line, page.Type == model.PageScripture); cleaned != "" {
				kept = append(kept, cleaned)
			}
		}
	}
	return joinSentences(kept)
}

func cleanLine(line string, scripture bool) string {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasSuffix(line, ":") {
		return ""
	}
	line = bulletPrefix.ReplaceAllString(line, "")
	line = verseBrackets.ReplaceAllString(line, "")
	line = superscriptDigits.ReplaceAllString(line, "")
	if scripture {
		line = leadingVerseNum.ReplaceAllString(line, "")
	}
	line = translationTag.ReplaceAllString(line, "")
	line = translationSuffix.ReplaceAllString(line, "")
	line = strings.TrimSpace(whitespaceRun.ReplaceAllString(line, " "))
	if strings.HasSuffix(line, ":") {
		return ""
	}
	return line
}

func joinSentences(pieces []string) string {
	var b strings.Builder
	for i, p := range pieces {
		if i == len(pieces)-1 {
			b.WriteString(p)
			break
		}
		if !endsSentence(p) {
			p = strings.TrimRight(p, ",;") + "."
		}
		b.WriteString(p)
		b.WriteString(" ")
	}
	return b.String()
}

func endsSentence(s string) bool {
	return strings.HasSuffix(s, ".") || strings.HasSuffix(s, "!") || strings.HasSuffix(s, "?") ||
		strings.HasSuffix(s, "…") || strings.HasSuffix(s, "\"") || strings.HasSuffix(s, "”") ||
		strings.HasSuffix(s, "'") || strings.HasSuffix(s, "’")
}
