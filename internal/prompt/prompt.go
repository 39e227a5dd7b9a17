// Package prompt builds the messages sent to the completion service.
package prompt

import (
	"fmt"
	"strings"
)

// DefaultLanguage is the source language assumed when none is configured.
const DefaultLanguage = "C"

// Closing ends every user message.
const Closing = "Provide the improved code and a clear explanation of the changes."

// Prompt is the system/user message pair for one rewrite.
type Prompt struct {
	System string
	User   string
}

// Build constructs the prompt for rewriting C source according to guidelines.
func Build(sourceCode, guidelines string) Prompt {
	return BuildFor(DefaultLanguage, sourceCode, guidelines)
}

// BuildFor constructs the prompt for source written in the given language.
// Source and guidelines are embedded verbatim.
func BuildFor(language, sourceCode, guidelines string) Prompt {
	language = strings.TrimSpace(language)
	if language == "" {
		language = DefaultLanguage
	}

	system := fmt.Sprintf("You are a helpful assistant that rewrites %s code strictly following given guidelines "+
		"and explains what was improved.", language)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Here is the %s code:\n\n", language)
	sb.WriteString(sourceCode)
	sb.WriteString("\n\nPlease modify it according to these guidelines:\n\n")
	sb.WriteString(guidelines)
	sb.WriteString("\n\n")
	sb.WriteString(Closing)

	return Prompt{System: system, User: sb.String()}
}
