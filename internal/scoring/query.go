// Package scoring implements the per-field weighted similarity
// compositions that roll a MemoryEmbedding up to a single score against a
// MemoryRetrieveQuery.
package scoring

import (
	"github.com/latticeforge/mnemo/internal/memtype"
	"github.com/latticeforge/mnemo/internal/vecmath"
)

// LocationQueryUnit mirrors a LocationEmbedding's shape for query-side
// matching.
type LocationQueryUnit struct {
	NameVec        vecmath.Vec
	CoordinatesVec vecmath.Vec // nil if unspecified
}

// ParticipantQueryUnit mirrors a ParticipantEmbedding's shape.
type ParticipantQueryUnit struct {
	NameVec vecmath.Vec
	RoleVec vecmath.Vec
}

// EnvironmentQueryUnit mirrors an EnvironmentEmbedding's shape.
type EnvironmentQueryUnit struct {
	AtmosphereVec vecmath.Vec
	ToneVec       vecmath.Vec
}

// EventQueryUnit mirrors an EventEmbedding's shape, minus intensity (the
// query does not carry one).
type EventQueryUnit struct {
	ActionVec    vecmath.Vec
	InitiatorVec vecmath.Vec // nil if unspecified
	TargetVec    vecmath.Vec // nil if unspecified
}

// SituationQueryUnit carries optional sub-queries combined with AND
// semantics within the unit: lists of locations/participants, one
// environment, a list of events. Time-span sub-queries are accepted for
// API completeness but do not participate in the embedding-based score
// (time spans are not embedded).
type SituationQueryUnit struct {
	NarrativeVec vecmath.Vec // nil if unspecified
	Locations    []LocationQueryUnit
	Participants []ParticipantQueryUnit
	Environment  *EnvironmentQueryUnit
	Events       []EventQueryUnit
	TimeSpans    []memtype.TimeSpan
}

// SemanticQueryUnit scores against a Semantic memory: a concept identifier
// (content/aliases) and/or a description.
type SemanticQueryUnit struct {
	ConceptContentVec vecmath.Vec // nil if unspecified
	ConceptAliasesVec vecmath.Vec // nil if unspecified
	DescriptionVec    vecmath.Vec // nil if unspecified
}

// hasConcept reports whether a concept identifier (content or aliases) was
// supplied.
func (q SemanticQueryUnit) hasConcept() bool {
	return q.ConceptContentVec != nil || q.ConceptAliasesVec != nil
}

// MemoryRetrieveQuery is a tagged union over query-unit lists: semantic
// units or situation units. Multiple units of the matching kind combine by
// summation (per the engine's scoring rules).
type MemoryRetrieveQuery struct {
	SemanticUnits  []SemanticQueryUnit
	SituationUnits []SituationQueryUnit
}

// PrioritizedQuery wraps a MemoryRetrieveQuery with an integer priority for
// external schedulers; the core scorer ignores priority.
type PrioritizedQuery struct {
	Query    MemoryRetrieveQuery
	Priority int
}

// ScoredMemory is the result of a full scoring pass.
type ScoredMemory struct {
	MemoryID memtype.MemoryId
	Score    float64
}
