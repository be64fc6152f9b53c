package forecast

import (
	"context"
	"runtime"

	"github.com/rs/zerolog"
)

type task struct {
	ctx        context.Context
	series     []float64
	horizon    int
	confidence float64
	out        chan result
}

type result struct {
	fit    *Fit
	points []Point
	err    error
}

// Pool runs model fits on a fixed set of workers so CPU-bound fitting never
// stalls request handling. It implements Engine, so callers are unaware
// whether they run inline or offloaded. Requests await their own result; a
// request that gives up simply abandons the buffered result channel and the
// worker's output is discarded.
type Pool struct {
	engine Engine
	tasks  chan task
	done   chan struct{}
}

func NewPool(engine Engine, workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	p := &Pool{
		engine: engine,
		tasks:  make(chan task),
		done:   make(chan struct{}),
	}
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	for {
		select {
		case <-p.done:
			return
		case t := <-p.tasks:
			if err := t.ctx.Err(); err != nil {
				t.out <- result{err: err}
				continue
			}
			fit, points, err := p.engine.FitForecast(t.ctx, t.series, t.horizon, t.confidence)
			t.out <- result{fit: fit, points: points, err: err}
		}
	}
}

func (p *Pool) FitForecast(ctx context.Context, series []float64, horizon int, confidence float64) (*Fit, []Point, error) {
	t := task{
		ctx:        ctx,
		series:     series,
		horizon:    horizon,
		confidence: confidence,
		out:        make(chan result, 1),
	}

	select {
	case p.tasks <- t:
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	}

	select {
	case res := <-t.out:
		return res.fit, res.points, res.err
	case <-ctx.Done():
		zerolog.Ctx(ctx).Debug().Msg("fit result abandoned by caller")
		return nil, nil, ctx.Err()
	}
}

// Close stops the workers. In-flight fits finish; queued tasks are dropped.
func (p *Pool) Close() {
	close(p.done)
}
