package datatable

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkPlannerPlan(t *testing.T) {
	t.Parallel()

	t.Run("small input reduces thread count", func(t *testing.T) {
		t.Parallel()
		p := NewChunkPlanner(0, 1000, 10)
		plan := p.Plan(8)
		assert.LessOrEqual(t, plan.NThreads, 8)
		assert.GreaterOrEqual(t, plan.ChunkCount, 1)
	})

	t.Run("large input keeps requested threads", func(t *testing.T) {
		t.Parallel()
		p := NewChunkPlanner(0, 100_000_000, 50)
		plan := p.Plan(4)
		assert.Equal(t, 4, plan.NThreads)
		assert.Equal(t, 0, plan.ChunkCount%plan.NThreads)
	})

	t.Run("zero threads clamped to one", func(t *testing.T) {
		t.Parallel()
		p := NewChunkPlanner(0, 1000, 10)
		plan := p.Plan(0)
		assert.GreaterOrEqual(t, plan.NThreads, 1)
	})
}

func TestChunkPlannerComputeChunkBoundaries(t *testing.T) {
	t.Parallel()

	p := NewChunkPlanner(0, 100_000_000, 50)
	plan := p.Plan(4)

	first := p.ComputeChunkBoundaries(0, plan, 0)
	assert.True(t, first.TrueStart)
	assert.Equal(t, int64(0), first.Start)
	assert.False(t, first.TrueEnd)

	last := p.ComputeChunkBoundaries(plan.ChunkCount-1, plan, 0)
	assert.True(t, last.TrueEnd)
	assert.Equal(t, int64(100_000_000), last.End)
	assert.False(t, last.TrueStart)
}

func TestChunkPlannerWorkDoneAmount(t *testing.T) {
	t.Parallel()

	p := NewChunkPlanner(0, 1000, 10)
	assert.Equal(t, 0.0, p.WorkDoneAmount(0))
	assert.Equal(t, 0.5, p.WorkDoneAmount(500))
	assert.Equal(t, 1.0, p.WorkDoneAmount(1000))
}

func TestChunkPlannerWorkDoneAmountEmptyInput(t *testing.T) {
	t.Parallel()

	p := NewChunkPlanner(5, 5, 10)
	assert.Equal(t, 1.0, p.WorkDoneAmount(5))
}

func TestChunkPlannerAdjustBoundariesNeverMovesTrueBoundaries(t *testing.T) {
	t.Parallel()

	p := NewChunkPlanner(0, 100_000_000, 50)
	p.AdjustBoundaries = func(c ChunkCoordinates) ChunkCoordinates {
		c.Start += 5
		c.End += 5
		return c
	}
	plan := p.Plan(4)

	first := p.ComputeChunkBoundaries(0, plan, 0)
	assert.Equal(t, int64(0), first.Start, "true start must not be moved by AdjustBoundaries")
	assert.Equal(t, first.End, p.inputStart+plan.ChunkSize+5, "non-true end is adjustable")

	last := p.ComputeChunkBoundaries(plan.ChunkCount-1, plan, 0)
	assert.Equal(t, int64(100_000_000), last.End, "true end must not be moved by AdjustBoundaries")
}
