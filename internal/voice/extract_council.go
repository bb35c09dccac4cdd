package voice

import (
	"regexp"
	"strings"
)

// Council section sentinels. The model writes voice messages first, then a
// dynamics section, then an insights section.
const (
	DynamicsMarker = "[COUNCIL_DYNAMICS]"
	InsightsMarker = "[COUNCIL_INSIGHTS]"
)

// minInsightLen discards insight descriptions too short to mean anything.
const minInsightLen = 10

// CouncilMessage is one parsed voice utterance, resolved to a roster member.
type CouncilMessage struct {
	VoiceID string
	Name    string
	Text    string
}

// DynamicsEntry is a directed opinion update between two roster members.
type DynamicsEntry struct {
	FromID  string
	ToID    string
	Opinion string
}

// InsightEntry is a per-voice narrative insight earned in group conversation.
type InsightEntry struct {
	VoiceID     string
	Description string
}

// CouncilParsed is the outcome of the multi-voice freeform grammar. All
// slices are non-nil; malformed content yields empty lists, never an error.
type CouncilParsed struct {
	Messages []CouncilMessage
	Dynamics []DynamicsEntry
	Insights []InsightEntry
}

// council sections in fixed order; switches are one-directional.
const (
	sectionMessages = iota
	sectionDynamics
	sectionInsights
)

var (
	speakerLineRe  = regexp.MustCompile(`^\s*\[?([^:\[\]]+?)\]?\s*:\s*(.+)$`)
	dynamicsPairRe = regexp.MustCompile(`^(.+?)(?:->|→)(.+?):(.+)$`)
)

// ParseCouncilBlock splits a council completion into per-voice messages,
// dynamics triples, and insights. Names the model invented or garbled are
// silently dropped.
func ParseCouncilBlock(raw string, roster []*Voice) CouncilParsed {
	out := CouncilParsed{
		Messages: []CouncilMessage{},
		Dynamics: []DynamicsEntry{},
		Insights: []InsightEntry{},
	}

	section := sectionMessages
	var dynamicsBuf, insightsBuf []string

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if idx := strings.Index(line, InsightsMarker); idx >= 0 && section < sectionInsights {
			section = sectionInsights
			line = strings.TrimSpace(line[idx+len(InsightsMarker):])
			if line == "" {
				continue
			}
		} else if idx := strings.Index(line, DynamicsMarker); idx >= 0 && section < sectionDynamics {
			section = sectionDynamics
			line = strings.TrimSpace(line[idx+len(DynamicsMarker):])
			if line == "" {
				continue
			}
		}

		if isNoneSentinel(line) {
			continue
		}

		switch section {
		case sectionMessages:
			m := speakerLineRe.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			v := ResolveSpeaker(m[1], roster)
			if v == nil {
				continue
			}
			out.Messages = append(out.Messages, CouncilMessage{
				VoiceID: v.ID,
				Name:    v.Name,
				Text:    strings.TrimSpace(m[2]),
			})
		case sectionDynamics:
			dynamicsBuf = append(dynamicsBuf, line)
		case sectionInsights:
			insightsBuf = append(insightsBuf, line)
		}
	}

	out.Dynamics = parseDynamics(strings.Join(dynamicsBuf, ";"), roster)
	out.Insights = parseInsights(strings.Join(insightsBuf, ";"), roster)
	return out
}

// parseDynamics splits "From -> To: opinion" triples on commas/semicolons.
// Both ends resolve by the looser containment rule because arrow-notation
// names are more often abbreviated. Self-referential triples are discarded.
func parseDynamics(s string, roster []*Voice) []DynamicsEntry {
	out := []DynamicsEntry{}
	for _, entry := range splitEntries(s) {
		if isNoneSentinel(entry) {
			continue
		}
		m := dynamicsPairRe.FindStringSubmatch(entry)
		if m == nil {
			continue
		}
		from := ResolveLoose(m[1], roster)
		to := ResolveLoose(m[2], roster)
		opinion := strings.TrimSpace(m[3])
		if from == nil || to == nil || from.ID == to.ID || opinion == "" {
			continue
		}
		out = append(out, DynamicsEntry{FromID: from.ID, ToID: to.ID, Opinion: opinion})
	}
	return out
}

// parseInsights splits "Name: description" entries on semicolons/newlines.
// Descriptions below minInsightLen are noise.
func parseInsights(s string, roster []*Voice) []InsightEntry {
	out := []InsightEntry{}
	for _, entry := range splitEntries(s) {
		if isNoneSentinel(entry) {
			continue
		}
		m := speakerLineRe.FindStringSubmatch(entry)
		if m == nil {
			continue
		}
		v := ResolveSpeaker(m[1], roster)
		if v == nil {
			v = ResolveLoose(m[1], roster)
		}
		desc := strings.TrimSpace(m[2])
		if v == nil || len(desc) < minInsightLen {
			continue
		}
		out = append(out, InsightEntry{VoiceID: v.ID, Description: desc})
	}
	return out
}

func splitEntries(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' })
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isNoneSentinel(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "none")
}

// normalizeName prepares a model-written name for comparison: brackets off,
// underscores to spaces, lowercased, spaces collapsed.
func normalizeName(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "[]")
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.ToLower(s)
	return strings.Join(strings.Fields(s), " ")
}

// ResolveSpeaker matches a speaker name against the roster: case-insensitive
// exact match first, then a retry with a leading "the" article stripped from
// both sides. Returns nil when nothing matches.
func ResolveSpeaker(name string, roster []*Voice) *Voice {
	n := normalizeName(name)
	if n == "" {
		return nil
	}
	for _, v := range roster {
		if normalizeName(v.Name) == n {
			return v
		}
	}
	stripped := strings.TrimPrefix(n, "the ")
	for _, v := range roster {
		if strings.TrimPrefix(normalizeName(v.Name), "the ") == stripped {
			return v
		}
	}
	return nil
}

// ResolveLoose matches by case-insensitive substring containment in either
// direction. More permissive than ResolveSpeaker; used for dynamics roles.
func ResolveLoose(name string, roster []*Voice) *Voice {
	n := normalizeName(name)
	if n == "" {
		return nil
	}
	for _, v := range roster {
		rn := normalizeName(v.Name)
		if strings.Contains(rn, n) || strings.Contains(n, rn) {
			return v
		}
	}
	return nil
}
