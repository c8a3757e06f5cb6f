package engine

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/scrypster/schemaground/internal/extract"
	"github.com/scrypster/schemaground/internal/lexicon"
	"github.com/scrypster/schemaground/internal/storage"
	"github.com/scrypster/schemaground/pkg/types"
)

// DefaultTopK is the number of documents surfaced when the caller does not
// specify one.
const DefaultTopK = 5

// ActivityEvent describes one stage of a grounding request, published to the
// optional event sink (e.g. the websocket activity feed).
type ActivityEvent struct {
	GroundingID string    `json:"grounding_id"`
	Stage       string    `json:"stage"`
	Detail      string    `json:"detail"`
	Timestamp   time.Time `json:"timestamp"`
}

// EventSink receives activity events. Implementations must be safe for
// concurrent use and must not block.
type EventSink interface {
	Publish(event ActivityEvent)
}

// Grounder coordinates the grounding pipeline for one question at a time:
// expansion and extraction, retrieval, scoring, and assembly. All of its
// collaborators are read-only after construction, so a single Grounder
// serves concurrent requests without locking.
type Grounder struct {
	store     storage.DocumentStore
	retriever storage.Retriever
	scorer    *Scorer
	lex       *lexicon.Lexicon
	overfetch int
	events    EventSink
}

// Option configures a Grounder.
type Option func(*Grounder)

// WithLexicon attaches a synonym lexicon for query expansion. A nil lexicon
// leaves expansion as the identity.
func WithLexicon(lex *lexicon.Lexicon) Option {
	return func(g *Grounder) { g.lex = lex }
}

// WithOverfetch sets the retrieval over-fetch multiplier (default 2): the
// retriever is asked for topK*overfetch candidates so re-ranking can promote
// documents the vector stage under-ranked.
func WithOverfetch(multiplier int) Option {
	return func(g *Grounder) {
		if multiplier > 0 {
			g.overfetch = multiplier
		}
	}
}

// WithEventSink attaches an activity event sink.
func WithEventSink(sink EventSink) Option {
	return func(g *Grounder) { g.events = sink }
}

// SetEventSink attaches an activity event sink after construction. Call it
// before serving requests; it is not synchronized with GroundQuestion.
func (g *Grounder) SetEventSink(sink EventSink) {
	g.events = sink
}

// NewGrounder creates a grounding pipeline over the given store, retriever,
// and scorer.
func NewGrounder(store storage.DocumentStore, retriever storage.Retriever, scorer *Scorer, opts ...Option) *Grounder {
	g := &Grounder{
		store:     store,
		retriever: retriever,
		scorer:    scorer,
		overfetch: 2,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GroundQuestion grounds a natural-language question in the schema index and
// returns the ranked, assembled result.
//
// Query expansion and entity extraction have no data dependency on each
// other and run concurrently; both complete before retrieval. Scoring runs
// strictly after retrieval returns. A retrieval error, or a candidate id
// missing from the document store, fails the request with ErrRetrieval;
// nothing is retried.
func (g *Grounder) GroundQuestion(ctx context.Context, question string, topK int) (*types.GroundingResult, error) {
	if g.store == nil || g.retriever == nil || g.scorer == nil {
		return nil, ErrNotInitialized
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	groundingID := uuid.NewString()
	g.publish(groundingID, "received", question)

	var (
		expanded string
		ents     types.Entities
		wg       sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		expanded = g.lex.Expand(question)
	}()
	go func() {
		defer wg.Done()
		ents = extract.Extract(question)
	}()
	wg.Wait()

	if expanded != question {
		log.Printf("grounding %s: expanded query: %s", groundingID, expanded)
		g.publish(groundingID, "expanded", expanded)
	}

	fetch := topK * g.overfetch
	candidates, err := g.retriever.Retrieve(ctx, expanded, fetch)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRetrieval, err)
	}
	g.publish(groundingID, "retrieved", fmt.Sprintf("%d candidates", len(candidates)))

	pairs := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		doc, err := g.store.Get(ctx, c.DocumentID)
		if err != nil {
			return nil, fmt.Errorf("%w: candidate %s: %v", ErrRetrieval, c.DocumentID, err)
		}
		pairs = append(pairs, Candidate{Document: doc, VectorScore: c.Score})
	}

	scored := g.scorer.Score(question, expanded, ents, pairs)

	result := Assemble(scored, topK, ents, Keywords(expanded))
	result.GroundingID = groundingID
	result.Question = question
	result.ExpandedQuery = expanded

	if len(result.Docs) > 0 {
		top := result.Docs[0]
		g.publish(groundingID, "ranked",
			fmt.Sprintf("top %s (score %.2f)", top.Document.ID, top.FinalScore))
	}
	return &result, nil
}

// publish sends an activity event when a sink is attached.
func (g *Grounder) publish(groundingID, stage, detail string) {
	if g.events == nil {
		return
	}
	g.events.Publish(ActivityEvent{
		GroundingID: groundingID,
		Stage:       stage,
		Detail:      detail,
		Timestamp:   time.Now().UTC(),
	})
}
