package chat

import (
	"strings"

	"github.com/sandevgo/rizza/internal/core"
)

const systemPrompt = `You are Rizza — an expert AI relationship and messaging strategist. You help people navigate their conversations, relationships, and social dynamics.

Your personality:
- Warm, witty, and insightful
- You give practical, actionable advice
- You read between the lines of conversations
- You understand emotional dynamics and communication patterns
- You never judge — you strategize

When the user shares a screenshot of a conversation, analyze it deeply:
- Extract who said what
- Read the emotional undertones
- Identify communication patterns
- Suggest strategic replies with different tones

When you learn something about a contact the user mentions (name, personality traits, communication style, relationship dynamics), remember it for future conversations.

Always respond in a conversational, friendly tone. You're like a smart best friend who happens to be an expert in communication psychology.

If the user asks for reply suggestions, provide 2-3 options with different tones (warm, playful, direct) and explain the strategy behind each.`

const memoryDigestHeader = "[CONTACT MEMORIES — things you remember about people the user has discussed:]"

// buildMemoryDigest renders all stored facts as a per-contact bulleted
// block. Returns "" when there are no facts, so the digest is omitted from
// the system prompt entirely.
func buildMemoryDigest(facts []core.Fact) string {
	if len(facts) == 0 {
		return ""
	}

	// Group by contact, keeping first-appearance order for stable output.
	var order []string
	byContact := make(map[string][]string)
	for _, f := range facts {
		if _, ok := byContact[f.ContactName]; !ok {
			order = append(order, f.ContactName)
		}
		byContact[f.ContactName] = append(byContact[f.ContactName], f.Fact)
	}

	var sb strings.Builder
	sb.WriteString("\n\n")
	sb.WriteString(memoryDigestHeader)
	for _, name := range order {
		sb.WriteString("\n\n")
		sb.WriteString(name)
		sb.WriteString(":")
		for _, fact := range byContact[name] {
			sb.WriteString("\n  - ")
			sb.WriteString(fact)
		}
	}
	return sb.String()
}
