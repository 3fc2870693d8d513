// Package bake drives the progressive radiosity bake of a level.
package bake

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/roomlight/internal/config"
	"github.com/Faultbox/roomlight/internal/level"
	"github.com/Faultbox/roomlight/internal/radiosity"
)

// Baker runs the radiosity bake over several passes. Each pass is a fresh
// engine that reads the lightmaps committed by the pass before, so every
// pass adds one bounce.
type Baker struct {
	level   *level.Level
	sampler *radiosity.Sampler
	passes  int
	policy  radiosity.CommitPolicy
	log     *zap.Logger

	pass   int
	engine *radiosity.Engine
}

// New prepares a bake of l rendered through target.
func New(l *level.Level, target radiosity.SampleTarget, cfg config.BakeConfig, log *zap.Logger) (*Baker, error) {
	sampler, err := radiosity.NewSampler(target, cfg.SampleSize)
	if err != nil {
		return nil, fmt.Errorf("bake: %w", err)
	}

	policy := radiosity.CommitRow
	if cfg.Commit == config.CommitLightmap {
		policy = radiosity.CommitLightmap
	}

	b := &Baker{
		level:   l,
		sampler: sampler,
		passes:  max(cfg.Passes, 1),
		policy:  policy,
		log:     log,
	}
	b.startPass()
	return b, nil
}

func (b *Baker) startPass() {
	b.pass++
	b.engine = radiosity.NewEngine(b.level.BakeTargets(), b.sampler,
		radiosity.WithCommitPolicy(b.policy),
		radiosity.WithLogger(b.log),
	)
	b.log.Info("bake pass started", zap.Int("pass", b.pass), zap.Int("passes", b.passes))
}

// Tick samples up to n texels, moving on to the next pass when one ends.
func (b *Baker) Tick(n int) error {
	for n > 0 && !b.Done() {
		before := b.engine.Sampled()
		if err := b.engine.Run(n); err != nil {
			return err
		}
		n -= b.engine.Sampled() - before

		if b.engine.State() == radiosity.Done && b.pass < b.passes {
			b.startPass()
		}
	}
	return nil
}

// Finish bakes every remaining pass.
func (b *Baker) Finish() error {
	for !b.Done() {
		if err := b.engine.Finish(); err != nil {
			return err
		}
		if b.pass < b.passes {
			b.startPass()
		}
	}
	return nil
}

// Done reports whether the last pass completed.
func (b *Baker) Done() bool {
	return b.pass >= b.passes && b.engine.State() == radiosity.Done
}

// Pass returns the current pass, counting from 1.
func (b *Baker) Pass() int {
	return b.pass
}

// Progress returns the overall fraction of the bake done.
func (b *Baker) Progress() float64 {
	return (float64(b.pass-1) + b.engine.Progress()) / float64(b.passes)
}

// Sampler returns the hemicube sampler.
func (b *Baker) Sampler() *radiosity.Sampler {
	return b.sampler
}
