package workflow

import (
	"fmt"
	"strings"
)

func editPrompt(path, instructions, original string) string {
	return fmt.Sprintf("I need you to edit the following file based on these instructions.\n\n"+
		"**File:** `%s`\n"+
		"**Instructions:** %s\n\n"+
		"**Current file contents:**\n```\n%s\n```\n\n"+
		"Return ONLY the complete updated file contents, with no explanation "+
		"or markdown code fences. Just the raw file content.", path, instructions, original)
}

func createPrompt(path, description string) string {
	return fmt.Sprintf("Generate the contents of a new file.\n\n"+
		"**File path:** `%s`\n"+
		"**Description:** %s\n\n"+
		"Return ONLY the complete file contents, with no explanation "+
		"or markdown code fences. Just the raw file content.", path, description)
}

func planPrompt(description, projectDir, files string) string {
	return fmt.Sprintf("I need you to plan a coding task. Here's the context:\n\n"+
		"**Task:** %s\n"+
		"**Working directory:** `%s`\n"+
		"**Files in project:**\n%s\n\n"+
		"Create a step-by-step plan. For each step, indicate:\n"+
		"1. What action to take (create file, edit file, run command)\n"+
		"2. Which file or command\n"+
		"3. What the change does\n\n"+
		"Keep the plan concise. I'll execute it step by step.\n"+
		"Format each step as: `STEP N: [ACTION] [target] — [description]`", description, projectDir, files)
}

func executePrompt(plan, projectDir string) string {
	return fmt.Sprintf("Now execute this plan by providing the actual file contents and commands.\n\n"+
		"**Plan:**\n%s\n\n"+
		"**Working directory:** `%s`\n\n"+
		"For each step, provide the COMPLETE implementation. "+
		"Format your response as a series of blocks:\n\n"+
		"For file creates/edits, use:\n"+
		"FILE: <path>\n"+
		"```\n<complete file contents>\n```\n\n"+
		"For commands, use:\n"+
		"RUN: <command>\n\n"+
		"Implement every step fully.", plan, projectDir)
}

// stripCodeFences removes one enclosing ``` pair a model may wrap content in.
func stripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		if nl := strings.IndexByte(text, '\n'); nl != -1 {
			text = text[nl+1:]
		} else {
			text = strings.TrimPrefix(text, "```")
		}
	}
	if strings.HasSuffix(text, "```") {
		text = strings.TrimRight(strings.TrimSuffix(text, "```"), " \t\r\n")
	}
	return text
}

// draftContent cleans a model reply into file content. Surrounding
// whitespace is dropped, then a final newline is restored when wanted.
func draftContent(reply string, trailingNewline bool) string {
	text := stripCodeFences(reply)
	if trailingNewline && text != "" && !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	return text
}
