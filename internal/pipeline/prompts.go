package pipeline

import (
	"fmt"
	"strings"

	"booklab/internal/storage"
)

// System prompts for each operation.
const (
	topicSystemPrompt = "You are a helpful assistant that extracts topics from text. " +
		"Return only topic names as a comma-separated list."

	outlineSystemPrompt = "You are a professional book writing assistant. " +
		"Create detailed, well-structured chapter outlines."

	refineOutlineSystemPrompt = "You are a professional book writing assistant. " +
		"Refine chapter outlines based on user feedback."

	chapterSystemPrompt = "You are a professional book writer. " +
		"Write engaging, well-structured chapters with smooth transitions and professional prose."

	refineContentSystemPrompt = "You are a professional book editor. " +
		"Refine and improve text based on specific instructions while maintaining the author's voice."
)

// topicUserPrompt asks for 1-3 topics as a comma-separated list.
func topicUserPrompt(text string) string {
	return "Analyze the following paragraph and identify 1-3 relevant topics or themes. " +
		"Return only the topic names as a comma-separated list. " +
		"Be specific and use clear, concise topic names.\n\nParagraph: " + text
}

// outlineUserPrompt asks for a structured outline built from numbered notes.
func outlineUserPrompt(topic string, notes []*storage.Note) string {
	return fmt.Sprintf(`You are helping write a book chapter about %q. Based on these notes, create a detailed chapter outline with main sections and key points.

Notes:
%s

Return a structured outline with:
- Introduction
- Main sections (3-5)
- Conclusion

Format the outline with clear headers and bullet points.`, topic, numberNotes(notes))
}

// refineOutlineUserPrompt combines an outline with free-text instructions.
func refineOutlineUserPrompt(outline, instructions string) string {
	return fmt.Sprintf("Here is a chapter outline:\n\n%s\n\nPlease refine it based on these instructions: %s\n\nReturn the improved outline maintaining the same structure.",
		outline, instructions)
}

// chapterUserPrompt asks for a full HTML chapter from an outline and notes.
func chapterUserPrompt(outline string, notes []*storage.Note) string {
	return fmt.Sprintf(`Write a complete book chapter based on this outline and source notes. Use professional, engaging writing. Include smooth transitions. Aim for approximately 2000-3000 words.

Outline:
%s

Source Notes:
%s

Write the complete chapter in HTML format suitable for a rich text editor. Use <h2> for section headers, <p> for paragraphs, and appropriate formatting.`, outline, numberNotes(notes))
}

// refineContentUserPrompt combines chapter text with free-text instructions.
func refineContentUserPrompt(content, instructions string) string {
	return fmt.Sprintf("Here is some text from a book chapter:\n\n%s\n\nPlease refine it based on these instructions: %s\n\nReturn the improved text in HTML format.",
		content, instructions)
}

// numberNotes renders notes as a 1-based numbered list.
func numberNotes(notes []*storage.Note) string {
	var b strings.Builder
	for i, note := range notes {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "%d. %s", i+1, note.Content)
	}
	return b.String()
}
