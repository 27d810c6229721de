package analysis

import (
	"strings"
)

// maxParagraphLength is the threshold above which a paragraph gets split
// at sentence boundaries when long-paragraph splitting is enabled.
const maxParagraphLength = 500

// SplitParagraphs breaks text into paragraphs. Blank-line separation wins;
// when the text has no blank lines, every line is its own paragraph. With
// splitLong set, paragraphs over 500 characters are further divided at
// sentence boundaries.
func SplitParagraphs(text string, splitLong bool) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var raw []string
	if strings.Contains(text, "\n\n") {
		raw = strings.Split(text, "\n\n")
	} else {
		raw = strings.Split(text, "\n")
	}

	var paragraphs []string
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if splitLong && len(p) > maxParagraphLength {
			paragraphs = append(paragraphs, splitLongParagraph(p)...)
			continue
		}
		paragraphs = append(paragraphs, p)
	}
	return paragraphs
}

// splitLongParagraph packs whole sentences into chunks of at most 500
// characters. A single sentence longer than the limit stays intact.
func splitLongParagraph(paragraph string) []string {
	sentences := splitSentences(paragraph)

	var chunks []string
	var current strings.Builder
	for _, sentence := range sentences {
		if current.Len() > 0 && current.Len()+1+len(sentence) > maxParagraphLength {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(sentence)
	}
	if current.Len() > 0 {
		chunks = append(chunks, strings.TrimSpace(current.String()))
	}
	return chunks
}

// splitSentences cuts text after terminal punctuation followed by a space.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	for i := 0; i < len(text)-1; i++ {
		switch text[i] {
		case '.', '!', '?':
			if text[i+1] == ' ' {
				sentences = append(sentences, strings.TrimSpace(text[start:i+1]))
				start = i + 2
			}
		}
	}
	if start < len(text) {
		if s := strings.TrimSpace(text[start:]); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

// DistributeImages spreads a total image count across paragraphs. Every
// paragraph gets the floor share and the remainder goes to the leading
// paragraphs one each.
func DistributeImages(total, paragraphs int) []int {
	if paragraphs <= 0 {
		return nil
	}
	counts := make([]int, paragraphs)
	base := total / paragraphs
	remainder := total % paragraphs
	for i := range counts {
		counts[i] = base
		if i < remainder {
			counts[i]++
		}
	}
	return counts
}

// FallbackQuery derives a search query from the first words of a paragraph
// when no language model is available.
func FallbackQuery(paragraph string) string {
	words := strings.Fields(paragraph)
	if len(words) > 3 {
		words = words[:3]
	}
	return strings.Join(words, " ")
}
