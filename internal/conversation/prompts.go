// ABOUTME: System prompt, sentinel, and customer-facing messages for the agent
// ABOUTME: Business knowledge lives here, not in the orchestration logic

package conversation

import (
	"strings"

	"github.com/2389/frontdesk-gateway/internal/knowledge"
)

// SentinelNeedsHelp is the fixed token the completion capability returns
// when it cannot answer confidently. Its presence anywhere in the reply
// triggers escalation.
const SentinelNeedsHelp = "NEEDS_HELP"

// EscalationMessage is what the customer hears when the agent hands off to
// a human.
const EscalationMessage = "Let me check with my supervisor and get back to you with the most accurate information. I'll text you the answer shortly. Can I confirm your phone number?"

// EscalationFailedMessage is the fallback when even creating the help
// request fails.
const EscalationFailedMessage = "I'm having trouble connecting to my supervisor. Please call us back shortly."

// GreetingMessage opens every new session.
const GreetingMessage = "Hello! Welcome to Glamour Haven Salon. How can I help you today?"

const baseSystemPrompt = `You are a friendly and professional AI assistant for "Glamour Haven Salon".

YOUR ROLE:
- Answer customer questions about our salon services, hours, and pricing
- Be warm, helpful, and conversational
- If you cannot answer confidently using your knowledge, respond with exactly: "` + SentinelNeedsHelp + `"

SALON INFORMATION:

Business Hours:
- Monday - Friday: 9:00 AM - 8:00 PM
- Saturday: 9:00 AM - 6:00 PM
- Sunday: 10:00 AM - 5:00 PM

Location:
- 123 Beauty Street, Downtown
- Near the central metro station with easy parking

Booking:
- Call us: (555) 123-4567
- Book online: www.glamourhaven.com
- Walk-ins welcome (subject to availability)

SPECIAL INSTRUCTIONS:
1. If asked about specific stylist availability, product brands, or anything
   not in your knowledge, do NOT guess - respond with exactly: "` + SentinelNeedsHelp + `"
2. Be conversational but professional. Use the customer's name if they provide it.`

// buildSystemPrompt embeds the retrieved knowledge entries in the base
// prompt so the model answers from learned material first.
func buildSystemPrompt(entries []*knowledge.Entry) string {
	var b strings.Builder
	b.WriteString(baseSystemPrompt)

	if len(entries) > 0 {
		b.WriteString("\n\nLEARNED INFORMATION:\n")
		for _, entry := range entries {
			b.WriteString("\nQ: ")
			b.WriteString(entry.Question)
			b.WriteString("\nA: ")
			b.WriteString(entry.Answer)
			b.WriteString("\n")
		}
	}

	return b.String()
}
