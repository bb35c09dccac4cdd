package voice

import (
	"regexp"
	"strconv"
	"strings"
)

// Assessment carries the structured side-effect data a voice appends to its
// 1:1 reply. Fields are optional and extracted independently; a malformed
// field is simply absent.
type Assessment struct {
	RelationshipShift Shift
	InfluenceDelta    *int
	ConfrontProgress  *int
	Reason            string
}

// DirectoryReply is the outcome of the tagged-block grammar: the visible
// reply text plus the assessment, nil when no block was found. The exchange
// still succeeds without a block; only the side effects are skipped.
type DirectoryReply struct {
	Text       string
	Assessment *Assessment
}

var (
	assessmentBlockRe = regexp.MustCompile(`(?is)\[ASSESSMENT\](.*?)\[/ASSESSMENT\]`)

	shiftFieldRe    = regexp.MustCompile(`(?im)^\s*relationship_shift\s*:\s*(.+)$`)
	deltaFieldRe    = regexp.MustCompile(`(?im)^\s*influence_delta\s*:\s*([+-]?\d+)`)
	progressFieldRe = regexp.MustCompile(`(?im)^\s*confront_progress\s*:\s*([+-]?\d+)`)
	reasonFieldRe   = regexp.MustCompile(`(?im)^\s*reason\s*:\s*(.+)$`)
)

// ExtractAssessment parses a completion into visible text plus an optional
// assessment block. It never fails: malformed input degrades to
// {text, assessment: nil}.
func ExtractAssessment(raw string) DirectoryReply {
	loc := assessmentBlockRe.FindStringSubmatchIndex(raw)
	if loc == nil {
		return DirectoryReply{Text: strings.TrimSpace(raw)}
	}

	block := raw[loc[2]:loc[3]]
	text := strings.TrimSpace(raw[:loc[0]] + raw[loc[1]:])

	a := &Assessment{RelationshipShift: ShiftNone}
	if m := shiftFieldRe.FindStringSubmatch(block); m != nil {
		a.RelationshipShift = ParseShift(m[1])
	}
	if m := deltaFieldRe.FindStringSubmatch(block); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			a.InfluenceDelta = &n
		}
	}
	if m := progressFieldRe.FindStringSubmatch(block); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			a.ConfrontProgress = &n
		}
	}
	if m := reasonFieldRe.FindStringSubmatch(block); m != nil {
		a.Reason = strings.TrimSpace(m[1])
	}

	return DirectoryReply{Text: text, Assessment: a}
}
