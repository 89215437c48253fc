package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/docqa-ai/docqa/internal/core/domain"
	"github.com/docqa-ai/docqa/internal/core/ports"
)

// fetchMultiplier widens each strategy's candidate list so fusion has enough
// overlap to work with before truncating to topK.
const fetchMultiplier = 3

type QueryOptions struct {
	DefaultTopK     int
	RRFK            int
	StrategyTimeout time.Duration
	ContextBudget   int
	PreviewChars    int
}

func (o QueryOptions) normalize() QueryOptions {
	out := o
	if out.DefaultTopK <= 0 {
		out.DefaultTopK = 5
	}
	if out.RRFK <= 0 {
		out.RRFK = defaultRRFK
	}
	if out.StrategyTimeout <= 0 {
		out.StrategyTimeout = 3 * time.Second
	}
	if out.ContextBudget <= 0 {
		out.ContextBudget = 6000
	}
	if out.PreviewChars <= 0 {
		out.PreviewChars = 160
	}
	return out
}

type QueryUseCase struct {
	embedder  ports.Embedder
	store     ports.ChunkStore
	generator ports.AnswerGenerator
	monitor   ports.SearchMonitor
	opts      QueryOptions
}

func NewQueryUseCase(
	embedder ports.Embedder,
	store ports.ChunkStore,
	generator ports.AnswerGenerator,
	monitor ports.SearchMonitor,
	opts QueryOptions,
) *QueryUseCase {
	return &QueryUseCase{
		embedder:  embedder,
		store:     store,
		generator: generator,
		monitor:   monitor,
		opts:      opts.normalize(),
	}
}

// Search embeds the query, runs the three strategies concurrently and fuses
// their rankings. An embedding failure aborts the query; a single strategy
// failing or timing out degrades to an empty contribution instead.
func (uc *QueryUseCase) Search(ctx context.Context, query string, topK int) ([]domain.FusedResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "search", errors.New("empty query"))
	}
	if topK <= 0 {
		topK = uc.opts.DefaultTopK
	}

	queryVector, err := uc.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	lists := uc.runStrategies(ctx, queryVector, query, topK*fetchMultiplier)
	return fuseRRF(lists, uc.opts.RRFK, topK), nil
}

func (uc *QueryUseCase) runStrategies(ctx context.Context, queryVector []float32, query string, fetch int) domain.HitLists {
	var lists domain.HitLists

	run := func(strategy string, out *[]domain.SearchHit, search func(context.Context) ([]domain.SearchHit, error)) func() error {
		return func() error {
			strategyCtx, cancel := context.WithTimeout(ctx, uc.opts.StrategyTimeout)
			defer cancel()

			start := time.Now()
			hits, err := search(strategyCtx)
			elapsed := time.Since(start)
			timedOut := errors.Is(err, context.DeadlineExceeded) || errors.Is(strategyCtx.Err(), context.DeadlineExceeded)

			if uc.monitor != nil {
				uc.monitor.ObserveStrategy(strategy, elapsed, len(hits), timedOut)
			}
			if err != nil {
				slog.Warn("search_strategy_degraded",
					"strategy", strategy,
					"timed_out", timedOut,
					"duration_ms", float64(elapsed.Microseconds())/1000.0,
					"error", err,
				)
				return nil
			}
			*out = hits
			return nil
		}
	}

	// Each strategy carries its own deadline; a slow one never blocks the
	// other two beyond its budget, and fusion starts once all have returned.
	g := new(errgroup.Group)
	g.Go(run("dense", &lists.Dense, func(c context.Context) ([]domain.SearchHit, error) {
		return uc.store.SearchDense(c, queryVector, fetch)
	}))
	g.Go(run("sparse", &lists.Sparse, func(c context.Context) ([]domain.SearchHit, error) {
		return uc.store.SearchSparse(c, query, fetch)
	}))
	g.Go(run("trigram", &lists.Trigram, func(c context.Context) ([]domain.SearchHit, error) {
		return uc.store.SearchTrigram(c, query, fetch)
	}))
	_ = g.Wait()

	return lists
}
