package quiz

import (
	"fmt"
	"strings"

	"github.com/JustJay7/courtdle-api/internal/models"
)

func summaryPrompt(parties []string, facts, question string) string {
	return fmt.Sprintf(
		"Parties: %s\nFacts: %s\nLegal Question: %s\nSummarize the above Supreme Court case details.",
		formatParties(parties), facts, question,
	)
}

func verdictPrompt(caseName string, parties []string, winningParty, userChoice string) string {
	return fmt.Sprintf(
		"Respond \"Correct\" if correct answer was chosen by user, else \"Incorrect\"\n"+
			"Case Name: %s\n"+
			"Choices: %s\n"+
			"Answer (if available, else go off of what you know about the case): %s\n"+
			"User choice: %s",
		caseName, formatParties(parties), winningParty, userChoice,
	)
}

func conclusionPrompt(conclusion string) string {
	return fmt.Sprintf("Conclusion: %s\nSummarize the above Supreme Court case conclusion details.", conclusion)
}

func formatParties(parties []string) string {
	quoted := make([]string, len(parties))
	for i, p := range parties {
		quoted[i] = fmt.Sprintf("%q", p)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// ParseVerdict reads a free-text "Correct"/"Incorrect" reply. Anything that
// starts with neither word is indeterminate.
func ParseVerdict(reply string) models.Verdict {
	normalized := strings.ToLower(strings.TrimLeft(strings.TrimSpace(reply), "\"'*`_ "))
	switch {
	case strings.HasPrefix(normalized, "incorrect"):
		return models.VerdictIncorrect
	case strings.HasPrefix(normalized, "correct"):
		return models.VerdictCorrect
	default:
		return models.VerdictIndeterminate
	}
}
