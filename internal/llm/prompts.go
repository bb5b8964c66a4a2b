package llm

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"resume-review/internal/shared/telemetry"
)

// DefaultPromptVersion is used when the caller does not pick one.
const DefaultPromptVersion = "v1"

//go:embed prompts/v1.txt
var promptV1 string

const (
	RoleSystem = "system"
	RoleUser   = "user"

	systemPromptStrict  = "You are a resume analysis engine. Respond with JSON only. No markdown. Output must match the schema exactly."
	systemPromptFixJSON = "You are a JSON repair tool. Return only valid JSON that matches the schema exactly."
)

// Message is a provider-neutral chat message.
type Message struct {
	Role    string
	Content string
}

// PromptTemplate returns the prompt template text and whether the version was recognized.
func PromptTemplate(version string) (string, bool) {
	switch version {
	case "v1":
		return promptV1, true
	default:
		return promptV1, false
	}
}

// Messages builds the chat for input. A context carrying WithFixJSON yields
// the repair chat instead.
func Messages(ctx context.Context, input AnalyzeInput) []Message {
	instructions := resolvePromptTemplate(input)
	if raw, ok := FixJSONFromContext(ctx); ok {
		return []Message{
			{Role: RoleSystem, Content: systemPromptFixJSON + "\n\n" + instructions},
			{Role: RoleUser, Content: fmt.Sprintf("Fix this JSON to match the schema exactly. Output JSON only:\n%s", raw)},
		}
	}
	return []Message{
		{Role: RoleSystem, Content: systemPromptStrict + "\n\n" + instructions},
		{Role: RoleUser, Content: buildUserPrompt(input)},
	}
}

// SystemAndUser flattens messages into one system and one user text, for
// providers that take a separate system instruction.
func SystemAndUser(messages []Message) (string, string) {
	var system, user []string
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			system = append(system, m.Content)
		default:
			user = append(user, m.Content)
		}
	}
	return strings.Join(system, "\n\n"), strings.Join(user, "\n\n")
}

func resolvePromptTemplate(input AnalyzeInput) string {
	version := strings.TrimSpace(input.PromptVersion)
	if version == "" {
		version = DefaultPromptVersion
	}
	template, ok := PromptTemplate(version)
	if !ok {
		telemetry.Info("llm.prompt.unknown_version", map[string]any{
			"prompt_version": version,
			"fallback":       DefaultPromptVersion,
		})
		version = DefaultPromptVersion
	}
	replacer := strings.NewReplacer(
		"{{PROMPT_VERSION}}", version,
		"{{FILE_NAME}}", input.FileName,
	)
	return replacer.Replace(template)
}

func buildUserPrompt(input AnalyzeInput) string {
	name := strings.TrimSpace(input.FileName)
	if name == "" {
		name = "N/A"
	}
	return fmt.Sprintf("File Name:\n%s\n\nResume Text:\n%s", name, input.ResumeText)
}
