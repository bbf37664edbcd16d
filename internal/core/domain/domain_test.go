package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/plait/internal/core/domain"
)

func TestGraph_Cycle(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(*domain.Graph)
		wantErr     bool
		errContains string
	}{
		{
			name: "Simple Cycle A->A",
			setup: func(g *domain.Graph) {
				tA := &domain.Task{
					Name:         domain.NewInternedString("A"),
					Dependencies: []domain.InternedString{domain.NewInternedString("A")},
				}
				_ = g.AddTask(tA)
			},
			wantErr:     true,
			errContains: "cycle detected",
		},
		{
			name: "Two Node Cycle A->B->A",
			setup: func(g *domain.Graph) {
				tA := &domain.Task{
					Name:         domain.NewInternedString("A"),
					Dependencies: []domain.InternedString{domain.NewInternedString("B")},
				}
				tB := &domain.Task{
					Name:         domain.NewInternedString("B"),
					Dependencies: []domain.InternedString{domain.NewInternedString("A")},
				}
				_ = g.AddTask(tA)
				_ = g.AddTask(tB)
			},
			wantErr:     true,
			errContains: "cycle detected",
		},
		{
			name: "Three Node Cycle A->B->C->A",
			setup: func(g *domain.Graph) {
				tA := &domain.Task{
					Name:         domain.NewInternedString("A"),
					Dependencies: []domain.InternedString{domain.NewInternedString("B")},
				}
				tB := &domain.Task{
					Name:         domain.NewInternedString("B"),
					Dependencies: []domain.InternedString{domain.NewInternedString("C")},
				}
				tC := &domain.Task{
					Name:         domain.NewInternedString("C"),
					Dependencies: []domain.InternedString{domain.NewInternedString("A")},
				}
				_ = g.AddTask(tA)
				_ = g.AddTask(tB)
				_ = g.AddTask(tC)
			},
			wantErr:     true,
			errContains: "cycle detected",
		},
		{
			name: "No Cycle A->B->C",
			setup: func(g *domain.Graph) {
				tA := &domain.Task{
					Name:         domain.NewInternedString("A"),
					Dependencies: []domain.InternedString{domain.NewInternedString("B")},
				}
				tB := &domain.Task{
					Name:         domain.NewInternedString("B"),
					Dependencies: []domain.InternedString{domain.NewInternedString("C")},
				}
				tC := &domain.Task{
					Name: domain.NewInternedString("C"),
				}
				_ = g.AddTask(tA)
				_ = g.AddTask(tB)
				_ = g.AddTask(tC)
			},
			wantErr: false,
		},
		{
			name: "Disconnected Components No Cycle",
			setup: func(g *domain.Graph) {
				// A->B
				tA := &domain.Task{
					Name:         domain.NewInternedString("A"),
					Dependencies: []domain.InternedString{domain.NewInternedString("B")},
				}
				tB := &domain.Task{
					Name: domain.NewInternedString("B"),
				}
				// C->D
				tC := &domain.Task{
					Name:         domain.NewInternedString("C"),
					Dependencies: []domain.InternedString{domain.NewInternedString("D")},
				}
				tD := &domain.Task{
					Name: domain.NewInternedString("D"),
				}
				_ = g.AddTask(tA)
				_ = g.AddTask(tB)
				_ = g.AddTask(tC)
				_ = g.AddTask(tD)
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := domain.NewGraph()
			tt.setup(g)
			err := g.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestGraph_TopologicalSort(t *testing.T) {
	// A -> B, C
	// B -> D
	// C -> D
	// D -> (leaf)
	// Validate visits nodes in name order, so the order is deterministic.

	g := domain.NewGraph()
	tA := &domain.Task{
		Name:         domain.NewInternedString("A"),
		Dependencies: []domain.InternedString{domain.NewInternedString("B"), domain.NewInternedString("C")},
	}
	tB := &domain.Task{
		Name:         domain.NewInternedString("B"),
		Dependencies: []domain.InternedString{domain.NewInternedString("D")},
	}
	tC := &domain.Task{
		Name:         domain.NewInternedString("C"),
		Dependencies: []domain.InternedString{domain.NewInternedString("D")},
	}
	tD := &domain.Task{
		Name: domain.NewInternedString("D"),
	}

	require.NoError(t, g.AddTask(tA))
	require.NoError(t, g.AddTask(tB))
	require.NoError(t, g.AddTask(tC))
	require.NoError(t, g.AddTask(tD))

	require.NoError(t, g.Validate())

	execOrder := make([]string, 0, g.TaskCount())
	for task := range g.Walk() {
		execOrder = append(execOrder, task.Name.String())
	}

	// Validate dependencies are met
	seen := make(map[string]bool)
	for _, taskName := range execOrder {
		task, found := g.GetTask(domain.NewInternedString(taskName))
		require.True(t, found)
		for _, dep := range task.Dependencies {
			assert.True(t, seen[dep.String()], "Dependency %s must be executed before %s", dep, taskName)
		}
		seen[taskName] = true
	}

	assert.Equal(t, []string{"D", "B", "C", "A"}, execOrder)
}

func TestGraph_AddTaskDuplicate(t *testing.T) {
	g := domain.NewGraph()
	require.NoError(t, g.AddTask(&domain.Task{Name: domain.NewInternedString("A")}))

	err := g.AddTask(&domain.Task{Name: domain.NewInternedString("A")})
	require.ErrorContains(t, err, domain.ErrTaskAlreadyExists.Error())
}

func TestGraph_MissingDependency(t *testing.T) {
	g := domain.NewGraph()
	require.NoError(t, g.AddTask(&domain.Task{
		Name:         domain.NewInternedString("A"),
		Dependencies: []domain.InternedString{domain.NewInternedString("ghost")},
	}))

	err := g.Validate()
	require.ErrorContains(t, err, domain.ErrMissingDependency.Error())
}

func TestGraph_Dependents(t *testing.T) {
	g := domain.NewGraph()
	a := domain.NewInternedString("A")
	require.NoError(t, g.AddTask(&domain.Task{Name: a}))
	require.NoError(t, g.AddTask(&domain.Task{
		Name:         domain.NewInternedString("B"),
		Dependencies: []domain.InternedString{a},
	}))
	require.NoError(t, g.AddTask(&domain.Task{
		Name:         domain.NewInternedString("C"),
		Dependencies: []domain.InternedString{a},
	}))

	assert.ElementsMatch(t, []string{"B", "C"}, domain.Strings(g.Dependents(a)))
	assert.Empty(t, g.Dependents(domain.NewInternedString("B")))
	assert.Equal(t, 3, g.TaskCount())
}

func TestInternedString(t *testing.T) {
	is1 := domain.NewInternedString("hello")
	is2 := domain.NewInternedString("hello")

	assert.Equal(t, is1, is2)
	assert.Equal(t, "hello", is1.String())

	var zero domain.InternedString
	assert.True(t, zero.IsZero())
	assert.Empty(t, zero.String())
	assert.Equal(t, []string{"a", "b"}, domain.Strings(domain.NewInternedStrings([]string{"a", "b"})))
}

