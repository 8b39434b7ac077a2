package cascade

import (
	"sync"

	"go.uber.org/zap"

	"wss/cache"
	"wss/rules"
	"wss/widget"
)

// Engine resolves styles against a single rule set consulting resolution
// cache first. It is safe for concurrent use. Host must call Invalidate for a
// node after changing its states or attributes and before resolving it again.
type Engine struct {
	rs       *rules.RuleSet
	log      *zap.Logger
	compiler *rules.Compiler
	cache    *cache.Cache[*Style]
	noCache  bool
	inline   sync.Map // inline text -> []rules.Declaration
}

// Option configures Engine.
type Option func(*Engine)

// WithLogger sets logger, default is no logging.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithoutCache makes every Resolve compute style anew, statistics still count
// queries as uncached.
func WithoutCache() Option {
	return func(e *Engine) {
		e.noCache = true
	}
}

// New creates engine for the rule set.
func New(rs *rules.RuleSet, opts ...Option) *Engine {
	e := &Engine{rs: rs, log: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	e.compiler = rules.NewCompiler(e.log)
	e.cache = cache.New[*Style](e.log)
	e.log = e.log.Named("cascade")
	return e
}

// Rules returns rule set the engine resolves against.
func (e *Engine) Rules() *rules.RuleSet {
	return e.rs
}

// Resolve returns style of the node. Returned Style is shared and must not
// be modified.
func (e *Engine) Resolve(n *widget.Node) *Style {
	if n == nil {
		return empty
	}
	key, ok := NewKey(e.rs, n)
	if !ok || e.noCache {
		e.cache.Uncached()
		return e.compute(n)
	}
	return e.cache.GetOrCompute(key, func() *Style {
		return e.compute(n)
	})
}

// ResolveParts resolves the widget itself (under empty name) and every
// subcontrol it exposes.
func (e *Engine) ResolveParts(n *widget.Node) map[string]*Style {
	out := map[string]*Style{"": e.Resolve(n)}
	for _, part := range n.Parts {
		out[part] = e.Resolve(n.For(part))
	}
	return out
}

// Invalidate evicts cached styles of the node and of every node whose style
// depended on it as an ancestor. Returns number of evicted entries.
func (e *Engine) Invalidate(id widget.ID) int {
	return e.cache.Invalidate(id)
}

// Stats returns cache statistics.
func (e *Engine) Stats() cache.Stats {
	return e.cache.Stats()
}

// NewKey builds cache key for the node limited to ancestor depth the rule set
// may consult.
func NewKey(rs *rules.RuleSet, n *widget.Node) (cache.Key, bool) {
	return cache.NewKey(n, rs.AncestorDepth())
}

func (e *Engine) compute(n *widget.Node) *Style {
	var inline []rules.Declaration
	if n.Inline != "" && n.Subcontrol == "" {
		inline = e.inlineDeclarations(n)
	}
	return compute(e.rs, n, inline)
}

func (e *Engine) inlineDeclarations(n *widget.Node) []rules.Declaration {
	if v, ok := e.inline.Load(n.Inline); ok {
		return v.([]rules.Declaration)
	}
	decls, err := e.compiler.CompileInline(n.Inline, e.rs.Variables())
	if _, loaded := e.inline.LoadOrStore(n.Inline, decls); !loaded && err != nil {
		e.log.Warn("Bad inline declarations", zap.Stringer("node", n), zap.String("style", n.Inline), zap.Error(err))
	}
	return decls
}
