package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voicebrowser/internal/domain/entity"
)

// scriptedBrowser fails the kinds listed in failOn and records execution
// order.
type scriptedBrowser struct {
	failOn   map[entity.ActionKind]bool
	executed []entity.ActionKind
}

func (b *scriptedBrowser) Execute(ctx context.Context, action entity.Action) entity.Result {
	b.executed = append(b.executed, action.Kind)
	if b.failOn[action.Kind] {
		return entity.Failure(action, "scripted failure")
	}
	return entity.Result{Success: true, Action: action}
}

func (b *scriptedBrowser) PageContent(ctx context.Context) (*entity.PageContent, error) {
	return &entity.PageContent{}, nil
}

func (b *scriptedBrowser) Shutdown(ctx context.Context) error { return nil }

func TestRunner_AllSucceed(t *testing.T) {
	browser := &scriptedBrowser{}
	runner := NewRunner(browser, nil)

	actions := []entity.Action{
		{Kind: entity.KindNavigate, Target: "https://example.com"},
		{Kind: entity.KindClick, Target: "button"},
		{Kind: entity.KindScreenshot},
	}
	result := runner.Run(context.Background(), actions)

	require.Len(t, result.Steps, 3)
	assert.Equal(t, 3, result.Succeeded)
	assert.Equal(t, []entity.ActionKind{entity.KindNavigate, entity.KindClick, entity.KindScreenshot}, browser.executed)
	for i, step := range result.Steps {
		assert.Equal(t, i, step.Index)
		assert.True(t, step.Success)
	}
}

func TestRunner_FailureDoesNotHalt(t *testing.T) {
	browser := &scriptedBrowser{failOn: map[entity.ActionKind]bool{entity.KindClick: true}}
	runner := NewRunner(browser, nil)

	actions := []entity.Action{
		{Kind: entity.KindNavigate},
		{Kind: entity.KindClick},
		{Kind: entity.KindExtract},
	}
	result := runner.Run(context.Background(), actions)

	require.Len(t, result.Steps, 3, "one entry per input, failed or not")
	assert.Equal(t, 2, result.Succeeded)
	assert.False(t, result.Steps[1].Success)
	assert.Equal(t, "scripted failure", result.Steps[1].Result.Error)
	assert.True(t, result.Steps[2].Success, "step after failure still runs")
}

func TestRunner_EmptyInput(t *testing.T) {
	runner := NewRunner(&scriptedBrowser{}, nil)
	result := runner.Run(context.Background(), nil)
	assert.Empty(t, result.Steps)
	assert.Zero(t, result.Succeeded)
}

func TestRunner_CancelledContext(t *testing.T) {
	browser := &scriptedBrowser{}
	runner := NewRunner(browser, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	actions := []entity.Action{{Kind: entity.KindNavigate}, {Kind: entity.KindClick}}
	result := runner.Run(ctx, actions)

	require.Len(t, result.Steps, 2, "cancelled steps still appear in the trail")
	assert.Zero(t, result.Succeeded)
	assert.Empty(t, browser.executed, "nothing executes after cancellation")
	for _, step := range result.Steps {
		assert.Contains(t, step.Result.Error, "cancelled")
	}
}
