// Package mnemo re-exports the agentic memory engine's public surface as
// a single import.
package mnemo

import (
	clusterpkg "github.com/latticeforge/mnemo/internal/cluster"
	configpkg "github.com/latticeforge/mnemo/internal/config"
	diffusepkg "github.com/latticeforge/mnemo/internal/diffuse"
	embedmodelpkg "github.com/latticeforge/mnemo/internal/embedmodel"
	fieldembedpkg "github.com/latticeforge/mnemo/internal/fieldembed"
	memtypepkg "github.com/latticeforge/mnemo/internal/memtype"
	pprpkg "github.com/latticeforge/mnemo/internal/ppr"
	probutilpkg "github.com/latticeforge/mnemo/internal/probutil"
	recallpkg "github.com/latticeforge/mnemo/internal/recall"
	scoringpkg "github.com/latticeforge/mnemo/internal/scoring"
	storepkg "github.com/latticeforge/mnemo/internal/store"
	tasksetpkg "github.com/latticeforge/mnemo/internal/taskset"
	timewheelpkg "github.com/latticeforge/mnemo/internal/timewheel"
	vecmathpkg "github.com/latticeforge/mnemo/internal/vecmath"
)

// Type aliases preserving one flat public API over the engine's packages.
type (
	MemoryId    = memtypepkg.MemoryId
	LinkId      = memtypepkg.LinkId
	MemType     = memtypepkg.MemType
	MemoryNote  = memtypepkg.MemoryNote
	MemoryLink  = memtypepkg.MemoryLink
	LinkType    = memtypepkg.LinkType
	ProcLink    = memtypepkg.ProcLink
	NoteBuilder = memtypepkg.NoteBuilder

	SemanticData    = memtypepkg.SemanticData
	SituationalData = memtypepkg.SituationalData
	ProceduralData  = memtypepkg.ProceduralData
	Context         = memtypepkg.Context
	Location        = memtypepkg.Location
	Participant     = memtypepkg.Participant
	Environment     = memtypepkg.Environment
	Event           = memtypepkg.Event
	Emotion         = memtypepkg.Emotion
	Sensory         = memtypepkg.Sensory
	TimeSpan        = memtypepkg.TimeSpan
	Action          = memtypepkg.Action

	Vec = vecmathpkg.Vec

	Model = embedmodelpkg.Model

	MemoryEmbedding = fieldembedpkg.MemoryEmbedding

	MemoryRetrieveQuery = scoringpkg.MemoryRetrieveQuery
	PrioritizedQuery    = scoringpkg.PrioritizedQuery
	ScoredMemory        = scoringpkg.ScoredMemory

	MemoryCluster = clusterpkg.MemoryCluster
	EmbeddedNote  = clusterpkg.EmbeddedNote
	NodeIndex     = clusterpkg.NodeIndex
	Direction     = clusterpkg.Direction

	Activation = diffusepkg.Activation

	TaskId   = tasksetpkg.TaskId
	TaskSet  = tasksetpkg.TaskSet
	SoulTask = tasksetpkg.SoulTask

	TimeWheel         = timewheelpkg.SimpleTimeWheel
	Runner            = timewheelpkg.Runner
	ScheduledTask     = timewheelpkg.ScheduledTask
	TaskKind          = timewheelpkg.Kind
	Callable          = timewheelpkg.Callable
	ErrorHandleConfig = timewheelpkg.ErrorHandleConfig
	CancellationToken = timewheelpkg.CancellationToken
	TaskID            = timewheelpkg.TaskID

	Recaller = recallpkg.Recaller
	Filter   = recallpkg.Filter

	VectorStore       = storepkg.VectorStore
	SchemaInitializer = storepkg.SchemaInitializer
	GraphStore        = storepkg.GraphStore
	MemoryRecord      = storepkg.MemoryRecord
	InMemoryStore     = storepkg.InMemoryStore
	QdrantStore       = storepkg.QdrantStore
	Neo4jStore        = storepkg.Neo4jStore
	MongoStore        = storepkg.MongoStore
	PostgresStore     = storepkg.PostgresStore

	DummyEmbedder  = embedmodelpkg.DummyEmbedder
	VoyageEmbedder = embedmodelpkg.VoyageEmbedder
	OllamaEmbedder = embedmodelpkg.OllamaEmbedder
	OpenAIEmbedder = embedmodelpkg.OpenAIEmbedder

	LLMConfig = configpkg.LLMConfig
)

// Memory type and direction constants.
const (
	Semantic    = memtypepkg.Semantic
	Situational = memtypepkg.Situational
	Procedural  = memtypepkg.Procedural

	DirectionIn   = clusterpkg.DirectionIn
	DirectionOut  = clusterpkg.DirectionOut
	DirectionBoth = clusterpkg.DirectionBoth

	TaskOnce   = timewheelpkg.Once
	TaskRepeat = timewheelpkg.Repeat
)

// Sentinel errors.
var (
	ErrInvalidInput     = memtypepkg.ErrInvalidInput
	ErrShapeMismatch    = memtypepkg.ErrShapeMismatch
	ErrInvalidNumValue  = memtypepkg.ErrInvalidNumValue
	ErrNodeNotContained = memtypepkg.ErrNodeNotContained
	ErrEdgeNotContained = memtypepkg.ErrEdgeNotContained
	ErrPastDeadline     = memtypepkg.ErrPastDeadline
	ErrExceedsHorizon   = memtypepkg.ErrExceedsHorizon
	ErrTaskFailed       = memtypepkg.ErrTaskFailed
)

// Constructors and free functions re-exported for single-import callers.
var (
	NewMemoryId    = memtypepkg.NewMemoryId
	NewLinkId      = memtypepkg.NewLinkId
	NewNoteBuilder = memtypepkg.NewNoteBuilder

	NewCluster = clusterpkg.New

	ComputeScore = scoringpkg.Compute
	RankAll      = scoringpkg.RankAll

	RunPPR = pprpkg.Run

	RunDiffusion = diffusepkg.Run

	NewTaskSet = tasksetpkg.New

	NewTimeWheel         = timewheelpkg.NewSimpleTimeWheel
	NewRunner            = timewheelpkg.NewRunner
	NewCancellationToken = timewheelpkg.NewCancellationToken

	NewRecaller = recallpkg.New

	NewInMemoryStore = storepkg.NewInMemoryStore
	NewQdrantStore   = storepkg.NewQdrantStore
	NewMongoStore    = storepkg.NewMongoStore
	NewPostgresStore = storepkg.NewPostgresStore
	NewNeo4jStore    = storepkg.NewNeo4jStore

	AutoModel = embedmodelpkg.AutoModel

	DefaultConfig = configpkg.Default
	ConfigFromEnv = configpkg.FromEnv

	LogSumExp                = probutilpkg.LogSumExp
	LogAddExp2               = probutilpkg.LogAddExp2
	OnlineTemperatureSoftmax = probutilpkg.OnlineTemperatureSoftmax
)
