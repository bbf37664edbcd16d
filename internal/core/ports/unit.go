package ports

import (
	"context"

	"go.trai.ch/plait/internal/core/domain"
)

//go:generate mockgen -source=unit.go -destination=mocks/mock_unit.go -package=mocks

// Unit is a named build step over one asset category.
// Implementations are stateless between runs and report failures as errors.
type Unit interface {
	Name() string
	Run(ctx context.Context, cfg *domain.Config) error
}

// StepRunner compiles and executes a composition outside of an entry point.
// The watcher uses it to run reactions.
type StepRunner interface {
	RunStep(ctx context.Context, name string, step domain.Step) error
}
