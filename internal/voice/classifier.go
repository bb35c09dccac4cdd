package voice

import (
	"strings"

	"github.com/rs/zerolog/log"

	"voiceloom/internal/ai"
)

// classifierPrompt asks for JSON only. Output is validated field by field by
// ExtractEventClass, so the model straying from the format cannot hurt.
const classifierPrompt = `You classify a story event for a cast of inner voices. Output only a JSON object:
{"impact": "none|minor|significant|critical", "themes": [...], "summary": "one sentence", "resolution_progress": [{"voice": "Name", "amount": 0-10}]}
Allowed themes: ` + "abandonment, control, grief, identity, trust, fear, desire, guilt, memory, rage."

// eventResolutions are the resolution types a story event may advance. This
// is the only channel through which fade and endure progress; confront is
// reserved for 1:1 confrontation.
var eventResolutions = []ResolutionType{
	ResolutionFade, ResolutionHeal, ResolutionWitness,
	ResolutionTransform, ResolutionEndure,
}

// ClassifyStoryEvent asks the provider to classify a scene excerpt. Any
// failure, transport or parse, yields the fully-safe default so the
// surrounding turn is never blocked.
func (s *Session) ClassifyStoryEvent(scene string) EventClass {
	scene = strings.TrimSpace(scene)
	if scene == "" {
		return DefaultEventClass()
	}

	out, err := s.provider.Generate([]ai.Message{
		{Role: "system", Content: classifierPrompt},
		{Role: "user", Content: TrimToChars(scene, 2000)},
	})
	if err != nil {
		log.Debug().Err(err).Msg("classifier call failed, using default")
		return DefaultEventClass()
	}
	return ExtractEventClass(out)
}

// ApplyEventProgress feeds the classifier's per-voice hints into the
// resolution tracker, restricted to the event-earnable types.
func (s *Session) ApplyEventProgress(class EventClass) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, h := range class.ResolutionProgress {
		v := ResolveLoose(h.VoiceName, s.voices)
		if v == nil || !v.Alive() || v.Resolution == nil {
			continue
		}
		before := v.Resolution.Progress
		if after := AdvanceResolution(v, h.Amount, eventResolutions...); after != before {
			s.save(v)
		}
	}
}
