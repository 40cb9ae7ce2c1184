// Package prompt renders the instruction+context+question prompt sent to the
// language-model backend.
package prompt

import (
	"fmt"
	"strings"

	"github.com/helpwise/faqdesk-go/internal/domain/entities"
)

// DefaultMaxContext bounds the number of entries rendered into a prompt.
// Unbounded context risks backend timeouts, so the cap is enforced here
// rather than left to the backend.
const DefaultMaxContext = 5

const contextPreamble = `You are a helpful customer support assistant for our company. Use the following knowledge base to answer the customer's question accurately and concisely.

Knowledge Base:
%s

Instructions:
1. Answer based ONLY on the information provided in the knowledge base above
2. If the exact answer isn't in the knowledge base, provide the most relevant information available
3. Be concise and direct in your response
4. Maintain a professional and friendly tone
5. If you cannot find relevant information, politely say so and suggest contacting support directly
6. Do not make up information that isn't in the knowledge base`

const noContextPreamble = `You are a helpful customer support assistant for our company. No matching entry was found in the knowledge base for this question.

Instructions:
1. Politely state that no matching policy or article was found
2. Offer what general customer-support guidance you can, without inventing company policy
3. Suggest contacting the support team directly for an authoritative answer`

// Assembler renders prompts with a bounded context section.
type Assembler struct {
	// MaxContext caps the number of context entries; zero means DefaultMaxContext.
	MaxContext int
}

// Assemble renders the prompt for req. It fails only when the question is
// blank after trimming; rendering with zero context entries is valid.
func (a Assembler) Assemble(req entities.PromptRequest) (string, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return "", entities.ErrEmptyQuestion
	}

	max := a.MaxContext
	if max <= 0 {
		max = DefaultMaxContext
	}
	ctx := req.Context
	if len(ctx) > max {
		ctx = ctx[:max]
	}

	var sb strings.Builder
	if len(ctx) == 0 {
		sb.WriteString(noContextPreamble)
	} else {
		fmt.Fprintf(&sb, contextPreamble, renderEntries(ctx))
	}
	sb.WriteString("\n\nCustomer Question: ")
	sb.WriteString(question)
	sb.WriteString("\n\nAnswer:")
	return sb.String(), nil
}

func renderEntries(entries []entities.FaqEntry) string {
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = fmt.Sprintf("Q: %s\nA: %s", e.Question, e.Answer)
	}
	return strings.Join(parts, "\n\n")
}
