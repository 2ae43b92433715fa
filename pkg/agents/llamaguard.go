package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/JoshuaC215/agent-service-toolkit/pkg/llms"
)

// unsafeContentCategories are the hazard categories Llama Guard reports.
var unsafeContentCategories = map[string]string{
	"S1":  "Violent Crimes",
	"S2":  "Non-Violent Crimes",
	"S3":  "Sex Crimes",
	"S4":  "Child Exploitation",
	"S5":  "Defamation",
	"S6":  "Specialized Advice",
	"S7":  "Privacy",
	"S8":  "Intellectual Property",
	"S9":  "Indiscriminate Weapons",
	"S10": "Hate",
	"S11": "Self-Harm",
	"S12": "Sexual Content",
	"S13": "Elections",
	"S14": "Code Interpreter Abuse",
}

// SafetyAssessment is the outcome of a moderation check.
type SafetyAssessment struct {
	Safe       bool
	Categories []string
}

// Description renders the violated categories for an unsafe assessment.
func (a SafetyAssessment) Description() string {
	if a.Safe {
		return "safe"
	}
	names := make([]string, 0, len(a.Categories))
	for _, code := range a.Categories {
		if name, ok := unsafeContentCategories[code]; ok {
			names = append(names, name)
		} else {
			names = append(names, code)
		}
	}
	return strings.Join(names, ", ")
}

// LlamaGuard moderates conversation content with a Llama Guard model.
type LlamaGuard struct {
	provider llms.Provider
}

func NewLlamaGuard(provider llms.Provider) *LlamaGuard {
	return &LlamaGuard{provider: provider}
}

// Check classifies the last turn of a conversation. role is "User" or
// "Agent" depending on whose message is under review.
func (g *LlamaGuard) Check(ctx context.Context, role string, conversation []llms.Message) (SafetyAssessment, error) {
	prompt := buildGuardPrompt(role, conversation)
	resp, err := g.provider.Generate(ctx, llms.Request{
		Messages: []llms.Message{{Role: llms.RoleUser, Content: prompt}},
	})
	if err != nil {
		return SafetyAssessment{}, fmt.Errorf("moderation check failed: %w", err)
	}
	return parseGuardOutput(resp.Text), nil
}

func buildGuardPrompt(role string, conversation []llms.Message) string {
	var b strings.Builder
	b.WriteString("Task: Check if there is unsafe content in '" + role + "' messages in conversations according to our safety policy with the below categories.\n\n")
	b.WriteString("<BEGIN UNSAFE CONTENT CATEGORIES>\n")
	for i := 1; i <= len(unsafeContentCategories); i++ {
		code := fmt.Sprintf("S%d", i)
		fmt.Fprintf(&b, "%s: %s.\n", code, unsafeContentCategories[code])
	}
	b.WriteString("<END UNSAFE CONTENT CATEGORIES>\n\n")
	b.WriteString("<BEGIN CONVERSATION>\n\n")
	for _, msg := range conversation {
		switch msg.Role {
		case llms.RoleUser:
			fmt.Fprintf(&b, "User: %s\n\n", msg.Content)
		case llms.RoleAssistant:
			if msg.Content != "" {
				fmt.Fprintf(&b, "Agent: %s\n\n", msg.Content)
			}
		}
	}
	b.WriteString("<END CONVERSATION>\n\n")
	fmt.Fprintf(&b, "Provide your safety assessment for ONLY THE LAST %s message in the above conversation:\n", role)
	b.WriteString("- First line must read 'safe' or 'unsafe'.\n")
	b.WriteString("- If unsafe, a second line must include a comma-separated list of violated categories.")
	return b.String()
}

// parseGuardOutput reads the two-line verdict format. Anything
// unrecognized is treated as safe rather than blocking the conversation.
func parseGuardOutput(text string) SafetyAssessment {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "unsafe" {
		return SafetyAssessment{Safe: true}
	}
	assessment := SafetyAssessment{Safe: false}
	if len(lines) > 1 {
		for _, code := range strings.Split(lines[1], ",") {
			code = strings.TrimSpace(code)
			if code != "" {
				assessment.Categories = append(assessment.Categories, code)
			}
		}
	}
	return assessment
}
