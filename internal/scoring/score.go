package scoring

import (
	"sort"

	"github.com/latticeforge/mnemo/internal/fieldembed"
	"github.com/latticeforge/mnemo/internal/memtype"
	"github.com/latticeforge/mnemo/internal/vecmath"
)

// safeCosine returns the cosine similarity of a and b, or 0 if either is
// absent or degenerate (shape mismatch, zero norm); the scoring contract
// guarantees a non-negative finite score even for partial data.
func safeCosine(a, b vecmath.Vec) float64 {
	if a == nil || b == nil {
		return 0
	}
	sim, err := vecmath.Cosine(a, b)
	if err != nil {
		return 0
	}
	if sim < 0 {
		return 0
	}
	return sim
}

// ScoreLocation implements `0.6*sim(name) + 0.4*sim(coords)` if coords are
// present on both sides, else `sim(name)`.
func ScoreLocation(note *fieldembed.LocationEmbedding, query LocationQueryUnit) float64 {
	if note == nil {
		return 0
	}
	nameSim := safeCosine(note.NameVec, query.NameVec)
	if note.CoordinatesVec != nil && query.CoordinatesVec != nil {
		coordSim := safeCosine(note.CoordinatesVec, query.CoordinatesVec)
		return 0.6*nameSim + 0.4*coordSim
	}
	return nameSim
}

// ScoreParticipant implements `0.6*sim(name) + 0.4*sim(role)`, collapsing
// missing fields by present-only renormalization.
func ScoreParticipant(note *fieldembed.ParticipantEmbedding, query ParticipantQueryUnit) float64 {
	if note == nil {
		return 0
	}
	return weightedPresent(
		[2]float64{0.6, 0.4},
		[2]float64{safeCosine(note.NameVec, query.NameVec), safeCosine(note.RoleVec, query.RoleVec)},
		[2]bool{note.NameVec != nil && query.NameVec != nil, note.RoleVec != nil && query.RoleVec != nil},
	)
}

// ScoreEnvironment implements `0.5*atmosphere + 0.5*tone`, present-only.
func ScoreEnvironment(note *fieldembed.EnvironmentEmbedding, query EnvironmentQueryUnit) float64 {
	if note == nil {
		return 0
	}
	return weightedPresent(
		[2]float64{0.5, 0.5},
		[2]float64{safeCosine(note.AtmosphereVec, query.AtmosphereVec), safeCosine(note.ToneVec, query.ToneVec)},
		[2]bool{note.AtmosphereVec != nil && query.AtmosphereVec != nil, note.ToneVec != nil && query.ToneVec != nil},
	)
}

// ScoreEvent implements: both initiator and target present ->
// `0.3*initiator + 0.3*target + 0.4*action`; exactly one present ->
// `0.4*that + 0.6*action`; neither -> `action` alone.
func ScoreEvent(note *fieldembed.EventEmbedding, query EventQueryUnit) float64 {
	if note == nil {
		return 0
	}
	actionSim := safeCosine(note.ActionVec, query.ActionVec)
	hasInitiator := note.InitiatorVec != nil && query.InitiatorVec != nil
	hasTarget := note.TargetVec != nil && query.TargetVec != nil

	switch {
	case hasInitiator && hasTarget:
		initSim := safeCosine(note.InitiatorVec, query.InitiatorVec)
		targetSim := safeCosine(note.TargetVec, query.TargetVec)
		return 0.3*initSim + 0.3*targetSim + 0.4*actionSim
	case hasInitiator:
		return 0.4*safeCosine(note.InitiatorVec, query.InitiatorVec) + 0.6*actionSim
	case hasTarget:
		return 0.4*safeCosine(note.TargetVec, query.TargetVec) + 0.6*actionSim
	default:
		return actionSim
	}
}

// weightedPresent renormalizes fixed weights over only the present
// (available on both sides) components, per the "present-only" scoring
// rule shared by Participant and Environment.
func weightedPresent(weights, scores [2]float64, present [2]bool) float64 {
	var totalWeight, totalScore float64
	for i := range weights {
		if present[i] {
			totalWeight += weights[i]
			totalScore += weights[i] * scores[i]
		}
	}
	if totalWeight == 0 {
		return 0
	}
	return totalScore / totalWeight
}

// ScoreSpecificSituation implements the mean of present component scores:
// narrative, location, participants, environment, event.
func ScoreSpecificSituation(note *fieldembed.SpecificSituationEmbedding, unit SituationQueryUnit, narrativeVec vecmath.Vec) float64 {
	if note == nil {
		return 0
	}
	var total float64
	var count int

	if narrativeVec != nil && note.NarrativeVec != nil {
		total += safeCosine(note.NarrativeVec, narrativeVec)
		count++
	}
	if note.Context.Location != nil && len(unit.Locations) > 0 {
		total += bestLocationScore(note.Context.Location, unit.Locations)
		count++
	}
	if note.Context.ParticipantsPooled != nil && len(unit.Participants) > 0 {
		total += bestParticipantPooledScore(note.Context.ParticipantsPooled, unit.Participants)
		count++
	}
	if unit.Environment != nil {
		total += ScoreEnvironment(&note.Context.Environment, *unit.Environment)
		count++
	}
	if note.Context.EventsPooled != nil && len(unit.Events) > 0 {
		total += bestEventPooledScore(note.Context.EventsPooled, unit.Events)
		count++
	}
	if count == 0 {
		return 0
	}
	return total / float64(count)
}

// bestLocationScore scores note's location against each candidate in the
// query's location list and returns the best match; AND semantics within
// a unit are satisfied by the highest-scoring alternative.
func bestLocationScore(note *fieldembed.LocationEmbedding, candidates []LocationQueryUnit) float64 {
	var best float64
	for _, c := range candidates {
		if s := ScoreLocation(note, c); s > best {
			best = s
		}
	}
	return best
}

func bestParticipantPooledScore(pooled vecmath.Vec, candidates []ParticipantQueryUnit) float64 {
	var best float64
	for _, c := range candidates {
		if s := safeCosine(pooled, c.NameVec); s > best {
			best = s
		}
	}
	return best
}

func bestEventPooledScore(pooled vecmath.Vec, candidates []EventQueryUnit) float64 {
	var best float64
	for _, c := range candidates {
		if s := safeCosine(pooled, c.ActionVec); s > best {
			best = s
		}
	}
	return best
}

// ScoreAbstractSituation scores only the matching abstract sub-kind;
// mismatched kinds (or a query unit that doesn't target this note's kind)
// yield 0.
func ScoreAbstractSituation(note *fieldembed.SituationalEmbedding, unit SituationQueryUnit) float64 {
	if note == nil || note.Kind != memtype.SituationAbstract {
		return 0
	}
	switch note.AbstractKind {
	case memtype.AbstractLocation:
		if note.AbstractLocation == nil || len(unit.Locations) == 0 {
			return 0
		}
		return bestLocationScore(note.AbstractLocation, unit.Locations)
	case memtype.AbstractParticipant:
		if note.AbstractParticipant == nil || len(unit.Participants) == 0 {
			return 0
		}
		var best float64
		for _, c := range unit.Participants {
			if s := ScoreParticipant(note.AbstractParticipant, c); s > best {
				best = s
			}
		}
		return best
	case memtype.AbstractEnvironment:
		if note.AbstractEnvironment == nil || unit.Environment == nil {
			return 0
		}
		return ScoreEnvironment(note.AbstractEnvironment, *unit.Environment)
	case memtype.AbstractEvent:
		if note.AbstractEvent == nil || len(unit.Events) == 0 {
			return 0
		}
		var best float64
		for _, c := range unit.Events {
			if s := ScoreEvent(note.AbstractEvent, c); s > best {
				best = s
			}
		}
		return best
	default:
		return 0
	}
}

// ScoreSemantic implements: concept = `0.7*sim(content) + 0.3*sim(fused_aliases)`
// when a concept identifier is present; final =
// `0.5*concept + 0.5*description` when a description is present, else just
// the concept score (or just the description score with no concept).
func ScoreSemantic(note *fieldembed.SemanticEmbedding, unit SemanticQueryUnit) float64 {
	if note == nil {
		return 0
	}
	var conceptScore float64
	haveConcept := unit.hasConcept()
	if haveConcept {
		conceptScore = 0.7*safeCosine(note.ContentVec, unit.ConceptContentVec) + 0.3*safeCosine(note.FusedAliases, unit.ConceptAliasesVec)
	}
	haveDescription := note.DescriptionVec != nil && unit.DescriptionVec != nil
	switch {
	case haveConcept && haveDescription:
		return 0.5*conceptScore + 0.5*safeCosine(note.DescriptionVec, unit.DescriptionVec)
	case haveConcept:
		return conceptScore
	case haveDescription:
		return safeCosine(note.DescriptionVec, unit.DescriptionVec)
	default:
		return 0
	}
}

// ScoreMemory computes the engine's full `anonymous_compute` score of a
// MemoryEmbedding against a MemoryRetrieveQuery: per-unit scores for the
// matching variant summed across units; mismatched variants score 0.0.
func ScoreMemory(note *fieldembed.MemoryEmbedding, query MemoryRetrieveQuery) float64 {
	if note == nil {
		return 0
	}
	var total float64
	switch note.Type {
	case memtype.Semantic:
		for _, u := range query.SemanticUnits {
			total += ScoreSemantic(note.Semantic, u)
		}
	case memtype.Situational:
		if note.Situational == nil {
			return 0
		}
		for _, u := range query.SituationUnits {
			if note.Situational.Kind == memtype.SituationSpecific {
				total += ScoreSpecificSituation(note.Situational.Specific, u, u.NarrativeVec)
			} else {
				total += ScoreAbstractSituation(note.Situational, u)
			}
		}
	case memtype.Procedural:
		// No query unit targets procedural memories; they are reached
		// through trigger links, not similarity.
		return 0
	}
	if total < 0 {
		return 0
	}
	return total
}

// Compute pairs a memory's id with its score against query.
func Compute(id memtype.MemoryId, emb *fieldembed.MemoryEmbedding, query MemoryRetrieveQuery) ScoredMemory {
	return ScoredMemory{MemoryID: id, Score: ScoreMemory(emb, query)}
}

// EmbeddingSource yields candidate embeddings by id. A *cluster.MemoryCluster
// (or a sub-cluster seeded by vector search) satisfies it.
type EmbeddingSource interface {
	AllNodeIDs() []memtype.MemoryId
	GetEmbedding(id memtype.MemoryId) (fieldembed.MemoryEmbedding, bool)
}

// RankAll scores every candidate in src against query, returning the
// scored ids in descending score order. Candidates without a stored
// embedding are skipped.
func RankAll(src EmbeddingSource, query MemoryRetrieveQuery) []ScoredMemory {
	ids := src.AllNodeIDs()
	out := make([]ScoredMemory, 0, len(ids))
	for _, id := range ids {
		emb, ok := src.GetEmbedding(id)
		if !ok {
			continue
		}
		out = append(out, Compute(id, &emb, query))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}
