package processor

import (
	"context"

	"drover/internal/exchange"
)

// Pipeline runs its children in declared order, each observing the side
// effects of the previous one. The fast path is a plain loop: as long as
// children complete synchronously, control never leaves this stack frame.
// When a child suspends, the remaining steps resume from the continuation
// it eventually invokes, on whatever goroutine that happens. Exactly one
// of the two paths is live per link.
type Pipeline struct {
	children []Processor
}

func NewPipeline(children ...Processor) *Pipeline {
	return &Pipeline{children: children}
}

func (p *Pipeline) Process(ctx context.Context, ex *exchange.Exchange, done Callback) bool {
	return p.run(ctx, ex, 0, done, true)
}

// run drives children starting at index from. onStack is true only while
// still on the stack of the original Process call; it decides the doneSync
// flag handed to the final callback.
func (p *Pipeline) run(ctx context.Context, ex *exchange.Exchange, from int, done Callback, onStack bool) bool {
	for i := from; i < len(p.children); i++ {
		if !continueRouting(ex) {
			break
		}
		next := i + 1
		sync := p.children[i].Process(ctx, ex, func(doneSync bool) {
			if doneSync {
				// The loop below the Process call continues.
				return
			}
			p.run(ctx, ex, next, done, false)
		})
		if !sync {
			return false
		}
	}
	done(onStack)
	return onStack
}
