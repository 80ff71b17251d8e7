package measure

import "strings"

// wrapText breaks text into lines no wider than width using greedy word
// wrapping. Words wider than a line are split between runes. Explicit
// newlines are kept.
func wrapText(text string, width float64, measure func(string) float64) []string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		line := ""
		for _, word := range words {
			candidate := word
			if line != "" {
				candidate = line + " " + word
			}
			if measure(candidate) <= width {
				line = candidate
				continue
			}
			if line != "" {
				lines = append(lines, line)
				line = ""
			}
			if measure(word) <= width {
				line = word
				continue
			}
			// Break an overlong word.
			chunk := ""
			for _, r := range word {
				next := chunk + string(r)
				if chunk != "" && measure(next) > width {
					lines = append(lines, chunk)
					next = string(r)
				}
				chunk = next
			}
			line = chunk
		}
		lines = append(lines, line)
	}
	return lines
}

// widest returns the largest measured width among lines.
func widest(lines []string, measure func(string) float64) float64 {
	w := 0.0
	for _, l := range lines {
		if lw := measure(l); lw > w {
			w = lw
		}
	}
	return w
}
