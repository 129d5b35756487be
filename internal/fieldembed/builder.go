package fieldembed

import (
	"context"

	"github.com/latticeforge/mnemo/internal/memtype"
	"github.com/latticeforge/mnemo/internal/vecmath"
)

// EmbedLocation embeds a Location: name always, coordinates only if
// present.
func (b *Builder) EmbedLocation(ctx context.Context, loc memtype.Location) (*LocationEmbedding, error) {
	nameVec, err := embedOne(ctx, b.Model, loc.Name)
	if err != nil {
		return nil, err
	}
	out := &LocationEmbedding{NameVec: nameVec}
	if loc.Coordinates != "" {
		coordVec, err := embedOne(ctx, b.Model, loc.Coordinates)
		if err != nil {
			return nil, err
		}
		out.CoordinatesVec = coordVec
	}
	return out, nil
}

// EmbedParticipant embeds a Participant's name and role, plus their 0.7/0.3
// blend.
func (b *Builder) EmbedParticipant(ctx context.Context, p memtype.Participant) (*ParticipantEmbedding, error) {
	nameVec, err := embedOne(ctx, b.Model, p.Name)
	if err != nil {
		return nil, err
	}
	roleVec, err := embedOne(ctx, b.Model, p.Role)
	if err != nil {
		return nil, err
	}
	fused, err := vecmath.Blend(nameVec, roleVec, 0.7)
	if err != nil {
		return nil, err
	}
	return &ParticipantEmbedding{NameVec: nameVec, RoleVec: roleVec, FusedVec: fused}, nil
}

// EmbedEnvironment embeds an Environment's atmosphere and tone.
func (b *Builder) EmbedEnvironment(ctx context.Context, e memtype.Environment) (*EnvironmentEmbedding, error) {
	atmosphereVec, err := embedOne(ctx, b.Model, e.Atmosphere)
	if err != nil {
		return nil, err
	}
	toneVec, err := embedOne(ctx, b.Model, e.Tone)
	if err != nil {
		return nil, err
	}
	return &EnvironmentEmbedding{AtmosphereVec: atmosphereVec, ToneVec: toneVec}, nil
}

// EmbedEvent embeds an Event's action text via infer_batch, along with its
// initiator/target identity text when present, carrying intensity through.
func (b *Builder) EmbedEvent(ctx context.Context, e memtype.Event) (*EventEmbedding, error) {
	actionVec, err := embedOne(ctx, b.Model, e.Action)
	if err != nil {
		return nil, err
	}
	out := &EventEmbedding{ActionVec: actionVec, Intensity: e.Intensity}
	if e.Initiator != nil {
		v, err := embedOne(ctx, b.Model, *e.Initiator)
		if err != nil {
			return nil, err
		}
		out.InitiatorVec = v
	}
	if e.Target != nil {
		v, err := embedOne(ctx, b.Model, *e.Target)
		if err != nil {
			return nil, err
		}
		out.TargetVec = v
	}
	return out, nil
}

// EmbedContext embeds each Context sub-entity, then pools lists: mean for
// participants, weighted-by-intensity for emotions/sensory/events. The
// single environment is embedded directly.
func (b *Builder) EmbedContext(ctx context.Context, c memtype.Context) (*ContextEmbedding, error) {
	out := &ContextEmbedding{}

	if c.Location != nil {
		loc, err := b.EmbedLocation(ctx, *c.Location)
		if err != nil {
			return nil, err
		}
		out.Location = loc
	}

	if len(c.Participants) > 0 {
		vecs := make([]vecmath.Vec, len(c.Participants))
		for i, p := range c.Participants {
			pe, err := b.EmbedParticipant(ctx, p)
			if err != nil {
				return nil, err
			}
			vecs[i] = pe.FusedVec
		}
		pooled, err := vecmath.MeanPool(vecs)
		if err != nil {
			return nil, err
		}
		out.ParticipantsPooled = pooled
	}

	if len(c.Emotions) > 0 {
		vecs := make([]vecmath.Vec, len(c.Emotions))
		weights := make([]float64, len(c.Emotions))
		for i, em := range c.Emotions {
			v, err := embedOne(ctx, b.Model, em.Name)
			if err != nil {
				return nil, err
			}
			vecs[i], weights[i] = v, em.Intensity
		}
		pooled, err := vecmath.WeightedPool(vecs, weights)
		if err != nil {
			return nil, err
		}
		out.EmotionsPooled = pooled
	}

	if len(c.Sensory) > 0 {
		vecs := make([]vecmath.Vec, len(c.Sensory))
		weights := make([]float64, len(c.Sensory))
		for i, s := range c.Sensory {
			v, err := embedOne(ctx, b.Model, s.Name)
			if err != nil {
				return nil, err
			}
			vecs[i], weights[i] = v, s.Intensity
		}
		pooled, err := vecmath.WeightedPool(vecs, weights)
		if err != nil {
			return nil, err
		}
		out.SensoryPooled = pooled
	}

	env, err := b.EmbedEnvironment(ctx, c.Environment)
	if err != nil {
		return nil, err
	}
	out.Environment = *env

	if len(c.Events) > 0 {
		vecs := make([]vecmath.Vec, len(c.Events))
		weights := make([]float64, len(c.Events))
		for i, e := range c.Events {
			ee, err := b.EmbedEvent(ctx, e)
			if err != nil {
				return nil, err
			}
			vecs[i], weights[i] = ee.ActionVec, e.Intensity
		}
		pooled, err := vecmath.WeightedPool(vecs, weights)
		if err != nil {
			return nil, err
		}
		out.EventsPooled = pooled
	}

	return out, nil
}

// EmbedSemantic embeds a Semantic memory's fields: content via
// infer_with_chunk, aliases via infer_and_fuse, their 0.6-weighted blend,
// and description (if present) via infer_with_chunk.
func (b *Builder) EmbedSemantic(ctx context.Context, s memtype.SemanticData) (*SemanticEmbedding, error) {
	contentVec, err := b.Model.InferWithChunk(ctx, s.Content)
	if err != nil {
		return nil, err
	}
	aliasesVec, err := b.Model.InferAndFuse(ctx, s.Aliases)
	if err != nil {
		return nil, err
	}
	fused, err := vecmath.Blend(contentVec, aliasesVec, 0.6)
	if err != nil {
		return nil, err
	}
	out := &SemanticEmbedding{ContentVec: contentVec, FusedAliases: fused}
	if s.Description != "" {
		descVec, err := b.Model.InferWithChunk(ctx, s.Description)
		if err != nil {
			return nil, err
		}
		out.DescriptionVec = descVec
	}
	return out, nil
}

// EmbedSituational embeds a Situational memory: a SpecificSituation wraps a
// Context embedding plus a narrative embedding; an Abstract situation
// embeds only its present sub-kind.
func (b *Builder) EmbedSituational(ctx context.Context, s memtype.SituationalData) (*SituationalEmbedding, error) {
	out := &SituationalEmbedding{Kind: s.Kind}
	switch s.Kind {
	case memtype.SituationSpecific:
		narrativeVec, err := b.Model.InferWithChunk(ctx, s.Narrative)
		if err != nil {
			return nil, err
		}
		contextEmb, err := b.EmbedContext(ctx, s.Context)
		if err != nil {
			return nil, err
		}
		out.Specific = &SpecificSituationEmbedding{NarrativeVec: narrativeVec, Context: *contextEmb}
	case memtype.SituationAbstract:
		out.AbstractKind = s.AbstractKind
		switch s.AbstractKind {
		case memtype.AbstractLocation:
			if s.AbstractLocation != nil {
				le, err := b.EmbedLocation(ctx, *s.AbstractLocation)
				if err != nil {
					return nil, err
				}
				out.AbstractLocation = le
			}
		case memtype.AbstractParticipant:
			if s.AbstractParticipant != nil {
				pe, err := b.EmbedParticipant(ctx, *s.AbstractParticipant)
				if err != nil {
					return nil, err
				}
				out.AbstractParticipant = pe
			}
		case memtype.AbstractEnvironment:
			if s.AbstractEnvironment != nil {
				ee, err := b.EmbedEnvironment(ctx, *s.AbstractEnvironment)
				if err != nil {
					return nil, err
				}
				out.AbstractEnvironment = ee
			}
		case memtype.AbstractEvent:
			if s.AbstractEvent != nil {
				ev, err := b.EmbedEvent(ctx, *s.AbstractEvent)
				if err != nil {
					return nil, err
				}
				out.AbstractEvent = ev
			}
		}
	}
	return out, nil
}

// EmbedProcedural embeds a Procedural memory's action content.
func (b *Builder) EmbedProcedural(ctx context.Context, p memtype.ProceduralData) (*EventEmbedding, error) {
	actionVec, err := embedOne(ctx, b.Model, p.Action.Content)
	if err != nil {
		return nil, err
	}
	return &EventEmbedding{ActionVec: actionVec}, nil
}

// EmbedNote embeds a MemoryNote into its MemoryEmbedding counterpart,
// dispatching to the variant matching note.Type.
func (b *Builder) EmbedNote(ctx context.Context, note memtype.MemoryNote) (*MemoryEmbedding, error) {
	out := &MemoryEmbedding{Type: note.Type}
	switch note.Type {
	case memtype.Semantic:
		if note.Semantic == nil {
			return nil, memtype.ErrInvalidInput
		}
		se, err := b.EmbedSemantic(ctx, *note.Semantic)
		if err != nil {
			return nil, err
		}
		out.Semantic = se
	case memtype.Situational:
		if note.Situational == nil {
			return nil, memtype.ErrInvalidInput
		}
		se, err := b.EmbedSituational(ctx, *note.Situational)
		if err != nil {
			return nil, err
		}
		out.Situational = se
	case memtype.Procedural:
		if note.Procedural == nil {
			return nil, memtype.ErrInvalidInput
		}
		pe, err := b.EmbedProcedural(ctx, *note.Procedural)
		if err != nil {
			return nil, err
		}
		out.Procedural = pe
	default:
		return nil, memtype.ErrInvalidInput
	}
	return out, nil
}
