package errorhandler

import (
	"context"

	"drover/internal/exchange"
	"drover/internal/processor"
)

// ScopeProcessor establishes an exception scope around its child
// sub-graph. The scope is pushed onto the exchange's scope stack for the
// duration of the child and popped on the child's completion, whichever
// execution context that arrives on. When a handled failure is unwinding
// to this scope, the unwind marker is cleared on exit so routing resumes
// at the step after this processor.
type ScopeProcessor struct {
	scope *Scope
	child processor.Processor
}

func WithScope(scope *Scope, child processor.Processor) *ScopeProcessor {
	return &ScopeProcessor{scope: scope, child: child}
}

func (s *ScopeProcessor) Process(ctx context.Context, ex *exchange.Exchange, done processor.Callback) bool {
	depth := s.enter(ex)

	sync := s.child.Process(ctx, ex, func(doneSync bool) {
		if doneSync {
			return
		}
		s.exit(ex, depth)
		done(false)
	})
	if !sync {
		return false
	}
	s.exit(ex, depth)
	done(true)
	return true
}

func (s *ScopeProcessor) enter(ex *exchange.Exchange) int {
	stack := scopeStack(ex)
	depth := len(stack) + 1
	// Multicast forks copy the properties map but share slice values with
	// their siblings; appending in place could write into a sibling's
	// backing array. Each push builds a stack owned by this exchange.
	owned := make([]scopeFrame, len(stack), depth)
	copy(owned, stack)
	owned = append(owned, scopeFrame{scope: s.scope, depth: depth})
	ex.SetProperty(exchange.PropScopeStack, owned)
	return depth
}

func (s *ScopeProcessor) exit(ex *exchange.Exchange, depth int) {
	stack := scopeStack(ex)
	if n := len(stack); n > 0 && stack[n-1].depth == depth {
		stack = stack[:n-1]
		if len(stack) == 0 {
			ex.RemoveProperty(exchange.PropScopeStack)
		} else {
			ex.SetProperty(exchange.PropScopeStack, stack)
		}
	}

	if v, ok := ex.Property(exchange.PropUnwindDepth); ok {
		if target, ok := v.(int); ok && target >= depth {
			ex.RemoveProperty(exchange.PropUnwindDepth)
		}
	}
}
