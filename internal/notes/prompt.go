package notes

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// SystemPrompt instructs the model how to shape the notes.
const SystemPrompt = `You are a study assistant that turns university lecture transcripts into clear, well organised study notes.
Write the notes in Markdown using exactly these sections:

## Summary
A short paragraph describing what the lecture covered.

## Key Concepts
A bulleted list of the most important terms and ideas, each with a one sentence explanation.

## Detailed Notes
Structured notes following the order of the lecture. Use sub-headings and bullet points.

## Questions for Review
A numbered list of questions a student could use to check their understanding.

Only use information from the transcript. Do not invent facts. Do not wrap the answer in a code block.`

const truncationMarker = "\n\n[transcript truncated]"

// BuildUserPrompt renders the lecture metadata followed by the transcript.
// Transcripts longer than maxChars runes are cut; maxChars <= 0 disables the limit.
func BuildUserPrompt(req Request, maxChars int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Lecture title: %s\n", strings.TrimSpace(req.Title))
	if v := strings.TrimSpace(req.Course); v != "" {
		fmt.Fprintf(&b, "Course: %s\n", v)
	}
	if v := strings.TrimSpace(req.Lecturer); v != "" {
		fmt.Fprintf(&b, "Lecturer: %s\n", v)
	}
	if v := strings.TrimSpace(req.LectureDate); v != "" {
		fmt.Fprintf(&b, "Date: %s\n", v)
	}
	b.WriteString("\nTranscript:\n")
	b.WriteString(Truncate(strings.TrimSpace(req.Transcript), maxChars))
	return b.String()
}

// Truncate cuts text to at most maxChars runes and appends a marker when it does.
func Truncate(text string, maxChars int) string {
	if maxChars <= 0 || utf8.RuneCountInString(text) <= maxChars {
		return text
	}
	count := 0
	for i := range text {
		if count == maxChars {
			return strings.TrimSpace(text[:i]) + truncationMarker
		}
		count++
	}
	return text
}

// CleanContent trims the model output and strips a surrounding code fence.
func CleanContent(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```")
	if nl := strings.IndexByte(content, '\n'); nl >= 0 {
		// drop the language tag line
		content = content[nl+1:]
	} else {
		content = ""
	}
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}
