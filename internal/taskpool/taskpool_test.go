package taskpool

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPredecessorOrdering(t *testing.T) {
	p := New(2)
	ctx := context.Background()

	var mu sync.Mutex
	var order []string

	p.Submit(ctx, "a", nil, func(ctx context.Context) error {
		mu.Lock()
		order = append(order, "a")
		mu.Unlock()
		return nil
	})
	p.Submit(ctx, "b", []TaskID{"a"}, func(ctx context.Context) error {
		mu.Lock()
		order = append(order, "b")
		mu.Unlock()
		return nil
	})

	assert.NoError(t, p.WaitUntilAllTasksComplete())
	assert.Equal(t, []string{"a", "b"}, order)
	assert.True(t, p.TaskCompleted("a"))
	assert.True(t, p.TaskCompleted("b"))
}

func TestDedupedSubmission(t *testing.T) {
	p := New(4)
	ctx := context.Background()

	var count int32
	var mu sync.Mutex
	work := func(ctx context.Context) error {
		mu.Lock()
		count++
		mu.Unlock()
		return nil
	}

	for i := 0; i < 5; i++ {
		p.SubmitDeduped(ctx, NewTaskID(), nil, "pkg-x", work)
	}
	assert.NoError(t, p.WaitUntilAllTasksComplete())
	assert.GreaterOrEqual(t, count, int32(1))
}
