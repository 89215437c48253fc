package ollama

import "fmt"

func buildAnswerPrompt(promptContext, question string) string {
	if promptContext == "" {
		return fmt.Sprintf(`Answer the user question using only provided context.
No context was retrieved for this question. Say directly that you do not have enough information to answer.

Question:
%s
`, question)
	}

	return fmt.Sprintf(`Answer the user question using only provided context.
If the context is insufficient, say it directly instead of guessing.

Context:
%s

Question:
%s
`, promptContext, question)
}
