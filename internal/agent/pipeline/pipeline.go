// Package pipeline runs one chat request end to end: sanitize, enrich,
// retrieve, gate, assemble, generate, and relay the answer as StreamEvents.
package pipeline

import (
	"context"
	"errors"
	"io"
	"runtime/debug"
	"time"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/sync/errgroup"

	"github.com/Chative-core-poc-v1/assistant/internal/agent/conversations"
	"github.com/Chative-core-poc-v1/assistant/internal/agent/enrich"
	"github.com/Chative-core-poc-v1/assistant/internal/agent/model"
	"github.com/Chative-core-poc-v1/assistant/internal/agent/preflight"
	"github.com/Chative-core-poc-v1/assistant/internal/agent/prompts"
	"github.com/Chative-core-poc-v1/assistant/internal/agent/sanitize"
	errx "github.com/Chative-core-poc-v1/assistant/internal/core/error"
	"github.com/Chative-core-poc-v1/assistant/internal/observability"
	logx "github.com/Chative-core-poc-v1/assistant/pkg/logger"
)

const recordTimeout = 5 * time.Second

// Deps are the external collaborators. Retriever and Generator are required;
// the rest may be nil.
type Deps struct {
	Retriever Retriever
	Generator Generator
	Profiles  ProfileStore
	History   HistoryStore
	Metrics   Recorder
	// Callbacks are attached to prompt rendering.
	Callbacks []einocb.Handler
}

// Pipeline holds read-only configuration and collaborators; it keeps no
// per-request state and is safe for concurrent use.
type Pipeline struct {
	cfg       model.PipelineConfig
	sanitizer *sanitize.Sanitizer
	enricher  *enrich.Enricher
	gate      *preflight.Gate
	assembler *prompts.Assembler
	deps      Deps
}

func New(cfg model.PipelineConfig, promptCfg model.PromptConfig, deps Deps) (*Pipeline, error) {
	if deps.Retriever == nil {
		return nil, errors.New("pipeline: retriever is required")
	}
	if deps.Generator == nil {
		return nil, errors.New("pipeline: generator is required")
	}
	if deps.Metrics == nil {
		deps.Metrics = noopRecorder{}
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}
	if cfg.RetrievalTimeout <= 0 || cfg.RetrievalTimeout > cfg.RequestTimeout {
		cfg.RetrievalTimeout = cfg.RequestTimeout
	}
	if cfg.RetrievalTopK <= 0 {
		cfg.RetrievalTopK = 5
	}

	return &Pipeline{
		cfg:       cfg,
		sanitizer: sanitize.New(cfg.MaxQueryLength),
		enricher:  enrich.New(cfg.MaxEnrichmentTerms),
		gate:      preflight.New(cfg.SufficiencyThreshold),
		assembler: prompts.NewAssembler(promptCfg, cfg.MaxHistoryTurns),
		deps:      deps,
	}, nil
}

// Run answers msg. The returned channel yields the events in order and is
// closed after the single done event. The caller must drain it.
func (p *Pipeline) Run(ctx context.Context, msg model.IncomingMessage) <-chan model.StreamEvent {
	out := make(chan model.StreamEvent, 16)
	go p.run(ctx, msg, out)
	return out
}

func (p *Pipeline) run(parent context.Context, msg model.IncomingMessage, out chan<- model.StreamEvent) {
	start := time.Now()
	em := newEmitter(out, p.deps.Metrics, start)
	p.deps.Metrics.StreamStarted()

	outcome := observability.OutcomeError
	var query string
	defer func() {
		if r := recover(); r != nil {
			logx.Ctx(parent).Error().
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Msg("chat pipeline panicked")
			em.fail(errx.SystemErrorMessage)
			outcome = observability.OutcomeError
		}
		em.finish()
		p.deps.Metrics.StreamFinished(outcome, time.Since(start))

		if outcome == observability.OutcomeAnswered || outcome == observability.OutcomeShortCircuit {
			p.record(parent, msg.ConversationID, query, em.text())
		}
	}()

	ctx, cancel := context.WithTimeout(parent, p.cfg.RequestTimeout)
	defer cancel()

	outcome, query = p.answer(ctx, msg, em)
	logx.Ctx(parent).Info().
		Str("outcome", outcome).
		Dur("elapsed", time.Since(start)).
		Msg("chat request finished")
}

// answer runs the stages and returns the outcome and the sanitized query.
func (p *Pipeline) answer(ctx context.Context, msg model.IncomingMessage, em *emitter) (string, string) {
	log := logx.Ctx(ctx)

	q := p.sanitizer.Sanitize(msg.Message)
	if !q.Valid {
		err := errx.Rejected(q.Reason)
		log.Info().Str("kind", string(errx.KindOf(err))).Str("reason", q.Reason).Msg("query rejected")
		em.fail(errx.UserMessage(err))
		return observability.OutcomeRejected, ""
	}

	profile, stored := p.loadContext(ctx, msg)
	history := msg.History
	if len(history) == 0 {
		history = stored
	}
	history = conversations.FilterTurns(history)

	enriched := p.enricher.Enrich(q.Text, profile)
	fragments := p.retrieve(ctx, enriched, history)
	if ctx.Err() != nil {
		return p.abort(ctx, em, ctx.Err()), q.Text
	}

	decision := p.gate.Decide(preflight.Input{
		Query:          q.Text,
		Profile:        profile,
		Fragments:      fragments,
		HasPageContext: msg.Page != nil,
	})
	if !decision.CanProceed {
		log.Info().
			Str("kind", string(errx.KindInsufficientGrounding)).
			Float64("best_score", model.BestScore(fragments)).
			Msg("short circuit, nothing to ground on")
		em.chunk(decision.FallbackText)
		return observability.OutcomeShortCircuit, q.Text
	}

	promptCtx := ctx
	if len(p.deps.Callbacks) > 0 {
		promptCtx = einocb.InitCallbacks(ctx, &einocb.RunInfo{
			Name:      "AnswerPrompt",
			Type:      "ChatTemplate",
			Component: components.ComponentOfPrompt,
		}, p.deps.Callbacks...)
	}
	prompt, err := p.assembler.Assemble(promptCtx, prompts.Request{
		Query:     q.Text,
		Profile:   profile,
		Page:      msg.Page,
		Fragments: decision.Fragments,
		History:   history,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to assemble prompt")
		em.fail(errx.SystemErrorMessage)
		return observability.OutcomeError, q.Text
	}

	return p.generate(ctx, prompt, em), q.Text
}

// loadContext fetches the profile and stored history concurrently. Either
// failing degrades to its zero value.
func (p *Pipeline) loadContext(ctx context.Context, msg model.IncomingMessage) (*model.UserProfile, []model.Turn) {
	var (
		profile *model.UserProfile
		stored  []model.Turn
	)
	g, gctx := errgroup.WithContext(ctx)

	if p.deps.Profiles != nil && msg.UserID != "" {
		g.Go(func() error {
			pr, err := await(gctx, func(c context.Context) (*model.UserProfile, error) {
				return p.deps.Profiles.GetProfile(c, msg.UserID)
			})
			if err != nil {
				logx.Ctx(ctx).Warn().Err(err).Str("user_id", msg.UserID).Msg("profile unavailable, continuing anonymously")
				return nil
			}
			profile = pr
			return nil
		})
	}
	if p.deps.History != nil && msg.ConversationID != "" && len(msg.History) == 0 {
		g.Go(func() error {
			turns, err := await(gctx, func(c context.Context) ([]model.Turn, error) {
				return p.deps.History.LoadTurns(c, msg.ConversationID)
			})
			if err != nil {
				logx.Ctx(ctx).Warn().Err(err).Str("conversation_id", msg.ConversationID).Msg("stored history unavailable")
				return nil
			}
			stored = turns
			return nil
		})
	}
	_ = g.Wait()
	return profile, stored
}

// retrieve never fails: errors and timeouts degrade to no fragments.
func (p *Pipeline) retrieve(ctx context.Context, query string, history []model.Turn) []model.Fragment {
	rctx, cancel := context.WithTimeout(ctx, p.cfg.RetrievalTimeout)
	defer cancel()

	recent := conversations.TrimTail(history, p.cfg.RetrievalHistoryTurns)
	fragments, err := await(rctx, func(c context.Context) ([]model.Fragment, error) {
		return p.deps.Retriever.Retrieve(c, query, recent, p.cfg.RetrievalTopK)
	})
	if err != nil {
		err = errx.WrapRetrieval(err)
		logx.Ctx(ctx).Warn().Err(err).Str("kind", string(errx.KindOf(err))).Msg("retrieval failed, continuing without fragments")
		p.deps.Metrics.RetrievalFailed()
		return []model.Fragment{}
	}

	ranked := model.RankFragments(fragments)
	if len(ranked) > p.cfg.RetrievalTopK {
		ranked = ranked[:p.cfg.RetrievalTopK]
	}
	p.deps.Metrics.RetrievalScore(model.BestScore(ranked))
	logx.Ctx(ctx).Debug().Int("fragments", len(ranked)).Float64("best_score", model.BestScore(ranked)).Msg("retrieval done")
	return ranked
}

type recvResult struct {
	msg *schema.Message
	err error
}

// generate relays the model stream chunk by chunk.
func (p *Pipeline) generate(ctx context.Context, prompt *model.AssembledPrompt, em *emitter) string {
	sr, err := await(ctx, func(c context.Context) (*schema.StreamReader[*schema.Message], error) {
		return p.deps.Generator.Stream(c, prompt)
	})
	if err != nil {
		return p.generationFailed(ctx, em, err)
	}

	// The reader goroutine owns sr so Recv and Close never run concurrently.
	stop := make(chan struct{})
	defer close(stop)
	recv := make(chan recvResult)
	go func() {
		defer sr.Close()
		defer func() {
			if r := recover(); r != nil {
				select {
				case recv <- recvResult{err: errors.New("generator stream panicked")}:
				case <-stop:
				}
			}
		}()
		for {
			m, err := sr.Recv()
			select {
			case recv <- recvResult{msg: m, err: err}:
			case <-stop:
				return
			}
			if err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return p.generationFailed(ctx, em, ctx.Err())
		case r := <-recv:
			if errors.Is(r.err, io.EOF) {
				return observability.OutcomeAnswered
			}
			if r.err != nil {
				return p.generationFailed(ctx, em, r.err)
			}
			if r.msg != nil {
				em.chunk(r.msg.Content)
			}
		}
	}
}

func (p *Pipeline) generationFailed(ctx context.Context, em *emitter, err error) string {
	if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
		err = errors.Join(ctxErr, err)
	}
	err = errx.WrapGeneration(err)
	logx.Ctx(ctx).Error().Err(err).Str("kind", string(errx.KindOf(err))).Msg("generation failed")
	em.fail(errx.UserMessage(err))
	return outcomeFor(err)
}

// abort ends a request whose context expired between stages.
func (p *Pipeline) abort(ctx context.Context, em *emitter, cause error) string {
	err := errx.WrapGeneration(cause)
	logx.Ctx(ctx).Warn().Err(err).Msg("request ended before generation")
	em.fail(errx.UserMessage(err))
	return outcomeFor(err)
}

func outcomeFor(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return observability.OutcomeTimeout
	case errors.Is(err, context.Canceled):
		return observability.OutcomeCanceled
	default:
		return observability.OutcomeError
	}
}

// record stores the finished exchange. It outlives client cancellation.
func (p *Pipeline) record(parent context.Context, conversationID, query, answer string) {
	if p.deps.History == nil || conversationID == "" || query == "" {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logx.Ctx(parent).Error().Interface("panic", r).Msg("recording conversation panicked")
		}
	}()
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), recordTimeout)
	defer cancel()
	if err := p.deps.History.SaveExchange(ctx, conversationID, query, answer); err != nil {
		logx.Ctx(parent).Warn().Err(err).Str("conversation_id", conversationID).Msg("failed to record conversation")
	}
}
