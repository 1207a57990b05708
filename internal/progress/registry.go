package progress

import (
	"context"
	"fmt"

	"github.com/alexanderramin/coursegate/internal/domain"
)

// Registry maps content type tags to resolvers.
type Registry struct {
	resolvers map[domain.ContentType]Resolver
}

func NewRegistry() *Registry {
	return &Registry{resolvers: make(map[domain.ContentType]Resolver)}
}

// Register binds r to typ, replacing any earlier binding.
func (g *Registry) Register(typ domain.ContentType, r Resolver) {
	g.resolvers[typ] = r
}

// Has reports whether typ has a resolver.
func (g *Registry) Has(typ domain.ContentType) bool {
	_, ok := g.resolvers[typ]
	return ok
}

// Resolve looks q up under each of its identifiers in order. The first
// non-zero result wins; if every key yields zero the first key's result is
// returned. Results from different keys are never averaged. Unknown types
// resolve to 0%, not completed, status unknown.
func (g *Registry) Resolve(ctx context.Context, q Query) (Resolution, error) {
	r, ok := g.resolvers[q.Type]
	if !ok {
		return Resolution{Status: domain.StatusUnknown}, nil
	}

	keys := q.Ref.Keys()
	if len(keys) == 0 {
		return Resolution{Status: domain.StatusNotStarted}, nil
	}

	var (
		first Resolution
		tried = make([]string, 0, len(keys))
	)
	for i, key := range keys {
		tried = append(tried, key)
		res, err := r.Resolve(ctx, q, key)
		if err != nil {
			return Resolution{Tried: tried}, fmt.Errorf("resolving %s %s: %w", q.Type, key, err)
		}
		res = res.normalize()
		if res.nonZero() {
			res.Tried = tried
			res.MatchedBy = key
			return res, nil
		}
		if i == 0 {
			first = res
		}
	}
	first.Tried = tried
	return first, nil
}

// Options carries the tunable thresholds of the built-in resolvers.
type Options struct {
	// MediaThreshold is the watched percentage at which video and audio
	// count as completed.
	MediaThreshold int
	// DocumentPromoteAt is the viewed percentage promoted to 100.
	DocumentPromoteAt int
}

func (o Options) withDefaults() Options {
	if o.MediaThreshold <= 0 {
		o.MediaThreshold = 90
	}
	if o.DocumentPromoteAt <= 0 {
		o.DocumentPromoteAt = 80
	}
	return o
}

// NewDefaultRegistry wires a resolver for every known content type.
func NewDefaultRegistry(store RecordReader, attempts AttemptReader, subs SubmissionReader, opts Options) *Registry {
	opts = opts.withDefaults()
	g := NewRegistry()
	media := &MediaResolver{Store: store, Threshold: opts.MediaThreshold}
	view := &ViewResolver{Store: store}
	g.Register(domain.ContentVideo, media)
	g.Register(domain.ContentAudio, media)
	g.Register(domain.ContentImage, view)
	g.Register(domain.ContentExternal, view)
	g.Register(domain.ContentDocument, &DocumentResolver{Store: store, PromoteAt: opts.DocumentPromoteAt})
	g.Register(domain.ContentAssessment, &AssessmentResolver{Attempts: attempts})
	g.Register(domain.ContentAssignment, &AssignmentResolver{Submissions: subs})
	g.Register(domain.ContentScorm, &ScormResolver{Store: store})
	return g
}
