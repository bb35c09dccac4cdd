package voice

import (
	"encoding/json"
	"math"
	"regexp"
	"strings"
)

// Impact is the classifier's severity level for a story event.
type Impact string

const (
	ImpactNone        Impact = "none"
	ImpactMinor       Impact = "minor"
	ImpactSignificant Impact = "significant"
	ImpactCritical    Impact = "critical"
)

// KnownThemes is the fixed theme taxonomy. Classifier output outside this
// set is silently dropped.
var KnownThemes = []string{
	"abandonment", "control", "grief", "identity", "trust",
	"fear", "desire", "guilt", "memory", "rage",
}

// ProgressHint is a per-voice resolution nudge suggested by the classifier.
// Amount is rounded and clamped to [0,10].
type ProgressHint struct {
	VoiceName string
	Amount    int
}

// EventClass is the validated classification of a story event.
type EventClass struct {
	Impact             Impact
	Themes             []string
	Summary            string
	ResolutionProgress []ProgressHint
}

// DefaultEventClass is the fully-safe fallback; classification failures must
// never block the surrounding turn.
func DefaultEventClass() EventClass {
	return EventClass{
		Impact:             ImpactNone,
		Themes:             []string{},
		ResolutionProgress: []ProgressHint{},
	}
}

var codeFenceRe = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")

// eventClassWire is the loose JSON shape accepted from the model.
type eventClassWire struct {
	Impact             string   `json:"impact"`
	Themes             []string `json:"themes"`
	Summary            string   `json:"summary"`
	ResolutionProgress []struct {
		Voice  string  `json:"voice"`
		Amount float64 `json:"amount"`
	} `json:"resolution_progress"`
}

// ExtractEventClass pulls the first top-level JSON object out of raw text
// (markdown fence unwrapped first) and validates every field against the
// closed enumerations. Any parse failure yields DefaultEventClass.
func ExtractEventClass(raw string) EventClass {
	s := strings.TrimSpace(raw)
	if m := codeFenceRe.FindStringSubmatch(s); m != nil {
		s = m[1]
	}
	obj := firstJSONObject(s)
	if obj == "" {
		return DefaultEventClass()
	}

	var wire eventClassWire
	if err := json.Unmarshal([]byte(obj), &wire); err != nil {
		return DefaultEventClass()
	}

	out := DefaultEventClass()
	out.Summary = strings.TrimSpace(wire.Summary)

	switch Impact(strings.ToLower(strings.TrimSpace(wire.Impact))) {
	case ImpactMinor:
		out.Impact = ImpactMinor
	case ImpactSignificant:
		out.Impact = ImpactSignificant
	case ImpactCritical:
		out.Impact = ImpactCritical
	default:
		// Unknown impact coerces to the most conservative level.
		out.Impact = ImpactNone
	}

	for _, t := range wire.Themes {
		t = strings.ToLower(strings.TrimSpace(t))
		if knownTheme(t) {
			out.Themes = append(out.Themes, t)
		}
	}

	for _, h := range wire.ResolutionProgress {
		name := strings.TrimSpace(h.Voice)
		if name == "" {
			continue
		}
		amount := int(math.Round(h.Amount))
		if amount < 0 {
			amount = 0
		}
		if amount > 10 {
			amount = 10
		}
		out.ResolutionProgress = append(out.ResolutionProgress, ProgressHint{VoiceName: name, Amount: amount})
	}

	return out
}

func knownTheme(t string) bool {
	for _, k := range KnownThemes {
		if t == k {
			return true
		}
	}
	return false
}

// firstJSONObject scans for the first complete top-level {...} span,
// skipping braces inside strings and escape sequences. Byte iteration is
// safe for the ASCII delimiters involved.
func firstJSONObject(s string) string {
	var depth, start int
	start = -1
	var inString, escape bool

	for i := 0; i < len(s); i++ {
		b := s[i]
		if escape {
			escape = false
			continue
		}
		if inString {
			if b == '\\' {
				escape = true
			} else if b == '"' {
				inString = false
			}
			continue
		}
		switch b {
		case '"':
			inString = true
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 && start != -1 {
					return s[start : i+1]
				}
			}
		}
	}
	return ""
}
