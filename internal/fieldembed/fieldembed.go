// Package fieldembed builds the per-field embedding analogue of each memory
// entity's fields, preserving structure rather than fusing prematurely, per
// the engine's memory-embedding construction rules.
package fieldembed

import (
	"context"

	"github.com/latticeforge/mnemo/internal/embedmodel"
	"github.com/latticeforge/mnemo/internal/memtype"
	"github.com/latticeforge/mnemo/internal/vecmath"
)

// LocationEmbedding embeds a Location's name and, if present, coordinates.
type LocationEmbedding struct {
	NameVec        vecmath.Vec
	CoordinatesVec vecmath.Vec // nil if the location carried no coordinates
}

// ParticipantEmbedding embeds a Participant's name and role, plus their
// 0.7/0.3 blend.
type ParticipantEmbedding struct {
	NameVec  vecmath.Vec
	RoleVec  vecmath.Vec
	FusedVec vecmath.Vec
}

// EnvironmentEmbedding embeds an Environment's atmosphere and tone.
type EnvironmentEmbedding struct {
	AtmosphereVec vecmath.Vec
	ToneVec       vecmath.Vec
}

// EventEmbedding embeds an Event's action text and, when present, its
// initiator/target identity text, carrying intensity through for the
// scorer.
type EventEmbedding struct {
	ActionVec    vecmath.Vec
	Intensity    float64
	InitiatorVec vecmath.Vec // nil if the event carried no initiator
	TargetVec    vecmath.Vec // nil if the event carried no target
}

// ContextEmbedding embeds a Context: each sub-entity embedded, then lists
// pooled (mean for participants, weighted-by-intensity for emotions,
// sensory data, and events); the single environment is embedded directly.
type ContextEmbedding struct {
	Location           *LocationEmbedding
	ParticipantsPooled vecmath.Vec // nil if no participants
	EmotionsPooled     vecmath.Vec // nil if no emotions
	SensoryPooled      vecmath.Vec // nil if no sensory data
	Environment        EnvironmentEmbedding
	EventsPooled       vecmath.Vec // nil if no events
}

// SemanticEmbedding embeds a Semantic memory's fields.
type SemanticEmbedding struct {
	ContentVec     vecmath.Vec
	FusedAliases   vecmath.Vec // blend(content, aliases, 0.6)
	DescriptionVec vecmath.Vec // nil if no description
}

// SpecificSituationEmbedding wraps a Context embedding plus a narrative
// embedding.
type SpecificSituationEmbedding struct {
	NarrativeVec vecmath.Vec
	Context      ContextEmbedding
}

// SituationalEmbedding is variant-tagged to match memtype.SituationalData:
// either a SpecificSituationEmbedding, or exactly one of the four abstract
// sub-kind embeddings.
type SituationalEmbedding struct {
	Kind memtype.SituationKind

	Specific *SpecificSituationEmbedding

	AbstractKind        memtype.AbstractKind
	AbstractLocation    *LocationEmbedding
	AbstractParticipant *ParticipantEmbedding
	AbstractEnvironment *EnvironmentEmbedding
	AbstractEvent       *EventEmbedding
}

// MemoryEmbedding is the fused-memory embedding counterpart of a
// memtype.MemoryNote: exactly one of Semantic/Situational/Procedural is
// populated, matching the note's Type.
type MemoryEmbedding struct {
	Type        memtype.MemType
	Semantic    *SemanticEmbedding
	Situational *SituationalEmbedding
	Procedural  *EventEmbedding // procedural action embedded as an action vector
}

// Builder constructs MemoryEmbedding values using an embedmodel.Model.
type Builder struct {
	Model embedmodel.Model
}

// embedOne runs a single-element infer_batch call and returns its sole
// result, the building block every other per-field helper composes from.
func embedOne(ctx context.Context, m embedmodel.Model, text string) (vecmath.Vec, error) {
	out, err := m.InferBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return vecmath.Vec{}, nil
	}
	return out[0], nil
}
