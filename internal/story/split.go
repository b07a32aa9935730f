package story

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// SplitHalves splits text into two parts at the paragraph or sentence
// boundary nearest the midpoint. Text no longer than threshold, or text with
// no usable boundary, is returned as a single part.
func SplitHalves(text string, threshold int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if threshold <= 0 || len(text) <= threshold {
		return []string{text}
	}
	mid := len(text) / 2
	cut := nearest(paragraphBreaks(text), mid)
	if cut < 0 {
		cut = nearest(sentenceBreaks(text), mid)
	}
	if cut < 0 {
		cut = nearest(spaceBreaks(text), mid)
	}
	if cut < 0 {
		cut = mid
		for cut < len(text) && !utf8.RuneStart(text[cut]) {
			cut++
		}
	}
	first := strings.TrimSpace(text[:cut])
	second := strings.TrimSpace(text[cut:])
	if first == "" || second == "" {
		return []string{text}
	}
	return []string{first, second}
}

// SplitItems splits a list into two halves when its combined text exceeds
// threshold. The first half takes the extra item.
func SplitItems(items []string, threshold int) [][]string {
	if len(items) == 0 {
		return nil
	}
	total := 0
	for _, it := range items {
		total += len(it) + 1
	}
	if threshold <= 0 || total <= threshold || len(items) < 2 {
		return [][]string{items}
	}
	half := (len(items) + 1) / 2
	return [][]string{items[:half], items[half:]}
}

// paragraphBreaks returns offsets just past each blank-line run.
func paragraphBreaks(text string) []int {
	var out []int
	lines := strings.SplitAfter(text, "\n")
	offset := 0
	prevBlank := false
	for _, line := range lines {
		blank := strings.TrimSpace(line) == ""
		if prevBlank && !blank && offset > 0 {
			out = append(out, offset)
		}
		prevBlank = blank
		offset += len(line)
	}
	return out
}

// sentenceBreaks returns offsets just past terminal punctuation followed by space.
func sentenceBreaks(text string) []int {
	var out []int
	for i := 0; i+1 < len(text); i++ {
		switch text[i] {
		case '.', '!', '?':
			if text[i+1] == ' ' || text[i+1] == '\n' {
				out = append(out, i+1)
			}
		}
	}
	return out
}

func spaceBreaks(text string) []int {
	var out []int
	for i, r := range text {
		if unicode.IsSpace(r) && i > 0 {
			out = append(out, i)
		}
	}
	return out
}

func nearest(offsets []int, mid int) int {
	best := -1
	bestDist := 0
	for _, off := range offsets {
		d := off - mid
		if d < 0 {
			d = -d
		}
		if best < 0 || d < bestDist {
			best, bestDist = off, d
		}
	}
	return best
}
