package platform

import (
	"context"
	"fmt"

	"github.com/kardex/kardex/pkg/adapters/fs"
	"github.com/kardex/kardex/pkg/core"
	"github.com/kardex/kardex/pkg/leitner"
	"github.com/kardex/kardex/pkg/match"
	"github.com/kardex/kardex/pkg/session"
)

// Open builds and initializes the set repository for the given deck path.
// When a repository was injected via WithRepository, the path is ignored.
func Open(ctx context.Context, path string, opts ...Option) (core.SetRepository, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	repo := o.repository
	if repo == nil {
		cfg := fs.Config{
			Path:      path,
			SystemDir: o.systemDir,
			Pattern:   o.pattern,
			MustExist: o.mustExist,
			Logger:    o.logger,
		}
		if len(o.serializers) > 0 {
			cfg.Serializers = fs.DefaultSerializers()
			for ext, s := range o.serializers {
				serializer, ok := s.(fs.Serializer)
				if !ok {
					return nil, fmt.Errorf("%w: serializer for %q does not implement fs.Serializer", core.ErrConfig, ext)
				}
				cfg.Serializers[ext] = serializer
			}
		}
		repo = fs.NewRepository(cfg)
	}

	if err := repo.Initialize(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}

// New assembles the full review stack: repository, scheduler and matcher.
//
//	svc, err := kardex.New(ctx, "./decks", kardex.WithMustExist(true))
func New(ctx context.Context, path string, opts ...Option) (*session.Service, error) {
	repo, err := Open(ctx, path, opts...)
	if err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	var sched *leitner.Scheduler
	if o.boxes != nil {
		if sched, err = leitner.New(*o.boxes); err != nil {
			return nil, err
		}
	}

	matcher := o.matcher
	if matcher == nil {
		if matcher, err = match.NewMatcherWith(o.similarity, o.threshold, o.margin); err != nil {
			return nil, err
		}
	}

	return session.NewService(repo, sched, matcher, o.logger)
}
