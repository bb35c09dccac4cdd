package voice

import (
	"fmt"
	"strings"

	"voiceloom/internal/ai"
)

// NeutralReply is the filler surfaced to the user when a provider call fails
// or an exchange is attempted while one is already outstanding.
const NeutralReply = "..."

// Approximate prompt budgets; LLMs average ~4 chars/token for English.
const (
	CharsPerToken   = 4
	BudgetPersona   = 600 * CharsPerToken
	BudgetOpinions  = 200 * CharsPerToken
	BudgetHistory   = 900 * CharsPerToken
	directoryWindow = 20 // turns shown to the model
	councilWindow   = 30
)

// TrimToChars truncates s to maxChars, preferring a word boundary.
func TrimToChars(s string, maxChars int) string {
	if maxChars <= 0 || len(s) <= maxChars {
		return s
	}
	r := []rune(s)
	if len(r) <= maxChars {
		return s
	}
	out := string(r[:maxChars])
	if lastSpace := strings.LastIndex(out, " "); lastSpace > maxChars/2 {
		return strings.TrimSpace(out[:lastSpace])
	}
	return strings.TrimSpace(out)
}

// relationshipTone converts the enumerated label into plain language for the
// prompt. The model sees stances, not internal metrics.
func relationshipTone(r Relationship) string {
	switch r {
	case Hostile:
		return "You are openly hostile toward them."
	case Resentful:
		return "You resent them and it colors your words."
	case Indifferent:
		return "You feel little either way about them."
	case Curious:
		return "You are curious about them."
	case Devoted:
		return "You are devoted to them."
	case Protective:
		return "You feel protective of them."
	case Obsessed:
		return "You are fixated on them; they occupy your thoughts."
	case Manic:
		return "Your fixation on them has turned feverish and unstable."
	case Grieving:
		return "You are grieving something between you and them."
	}
	return ""
}

func personaBlock(v *Voice) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, a voice of the %s arcana.\n", v.Name, v.Arcana)
	if v.Personality != "" {
		b.WriteString(TrimToChars(v.Personality, BudgetPersona))
		b.WriteString("\n")
	}
	if v.SpeakingStyle != "" {
		b.WriteString("Speaking style: " + TrimToChars(v.SpeakingStyle, BudgetPersona/2) + "\n")
	}
	b.WriteString(relationshipTone(v.Relationship) + "\n")
	if v.Resolution != nil {
		fmt.Fprintf(&b, "Unresolved: %s\n", TrimToChars(v.Resolution.Condition, 300))
	}
	return b.String()
}

// buildDirectoryMessages assembles the 1:1 prompt: persona system prompt
// with assessment-block instructions, then the bounded history window, then
// the new user message.
func buildDirectoryMessages(v *Voice, userText string) []ai.Message {
	var sys strings.Builder
	sys.WriteString(personaBlock(v))
	sys.WriteString(`
You are speaking with the user one on one. Reply in character, briefly.
After your reply, append an assessment block exactly like this:
[ASSESSMENT]
relationship_shift: none | warmer | colder | much_warmer | much_colder
influence_delta: integer between -8 and 8
confront_progress: integer 0-10 (only if this exchange confronted what stands between you)
reason: one short sentence
[/ASSESSMENT]
`)

	msgs := []ai.Message{{Role: "system", Content: sys.String()}}

	window := v.DirectoryHistory
	if len(window) > directoryWindow {
		window = window[len(window)-directoryWindow:]
	}
	var used int
	for _, t := range window {
		if used += len(t.Text); used > BudgetHistory {
			break
		}
		role := "user"
		if t.Role == "voice" {
			role = "assistant"
		}
		msgs = append(msgs, ai.Message{Role: role, Content: t.Text})
	}
	msgs = append(msgs, ai.Message{Role: "user", Content: userText})
	return msgs
}

// buildCouncilMessages assembles the shared multi-voice prompt: roster with
// personas and mutual opinions, format instructions, bounded shared history,
// and the user's message when present.
func buildCouncilMessages(roster []*Voice, history []Turn, userText string) []ai.Message {
	var sys strings.Builder
	sys.WriteString("You orchestrate a council of inner voices. The voices:\n\n")
	for _, v := range roster {
		fmt.Fprintf(&sys, "%s (%s): %s\n", v.Name, v.Arcana, TrimToChars(v.Personality, 240))
		var opinions []string
		for otherID, opinion := range v.Relationships {
			other := findByID(roster, otherID)
			if other == nil {
				continue
			}
			opinions = append(opinions, fmt.Sprintf("about %s: %s", other.Name, TrimToChars(opinion, 120)))
			if len(opinions) >= 3 {
				break
			}
		}
		if len(opinions) > 0 {
			sys.WriteString("  " + TrimToChars(strings.Join(opinions, "; "), BudgetOpinions) + "\n")
		}
	}
	sys.WriteString(`
Write the next beat of their conversation. Format:
- One line per utterance: Name: text
- Not every voice speaks every turn.
- Then a line ` + DynamicsMarker + ` followed by shifted opinions as "From -> To: opinion" separated by ";" (or the word none).
- Then a line ` + InsightsMarker + ` followed by "Name: insight" entries separated by ";" (or the word none).
`)

	msgs := []ai.Message{{Role: "system", Content: sys.String()}}

	window := history
	if len(window) > councilWindow {
		window = window[len(window)-councilWindow:]
	}
	var lines []string
	var used int
	for _, t := range window {
		line := t.Name + ": " + t.Text
		if t.Role == "user" {
			line = "User: " + t.Text
		}
		if used += len(line); used > BudgetHistory {
			break
		}
		lines = append(lines, line)
	}
	if len(lines) > 0 {
		msgs = append(msgs, ai.Message{Role: "user", Content: "Recent conversation:\n" + strings.Join(lines, "\n")})
	}
	if userText != "" {
		msgs = append(msgs, ai.Message{Role: "user", Content: "User says: " + userText})
	} else {
		msgs = append(msgs, ai.Message{Role: "user", Content: "Continue."})
	}
	return msgs
}

// buildOutreachMessages asks one voice for a short unprompted private
// message to the user, grounded in what triggered it.
func buildOutreachMessages(v *Voice) []ai.Message {
	sys := personaBlock(v) + `
You have decided to reach out to the user privately, unprompted.
Write one short message (1-3 sentences) in character. No preamble, no quotes.
`
	user := "Now."
	if v.PendingDM != nil && v.PendingDM.Trigger != "" {
		user = "What moved you: " + TrimToChars(v.PendingDM.Trigger, 400)
	}
	return []ai.Message{
		{Role: "system", Content: sys},
		{Role: "user", Content: user},
	}
}

func findByID(roster []*Voice, id string) *Voice {
	for _, v := range roster {
		if v.ID == id {
			return v
		}
	}
	return nil
}
