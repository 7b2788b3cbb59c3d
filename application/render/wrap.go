package render

import "strings"

// WrapText splits text into lines greedily: words are added to the current
// line while its measured width, trailing space included, fits maxWidth.
// Words are never split and a single long word gets its own line.
func WrapText(text string, maxWidth float64, measure func(string) float64) []string {
	words := strings.Split(text, " ")
	lines := make([]string, 0, 1)

	line := ""
	for _, word := range words {
		candidate := line + word + " "
		if measure(candidate) > maxWidth && line != "" {
			lines = append(lines, strings.TrimRight(line, " "))
			line = word + " "
			continue
		}
		line = candidate
	}

	return append(lines, strings.TrimRight(line, " "))
}
