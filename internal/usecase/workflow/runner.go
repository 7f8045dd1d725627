// Package workflow sequences multiple actions against the browser, one at a
// time, collecting per-step outcomes.
package workflow

import (
	"context"
	"time"

	"go.uber.org/zap"

	"voicebrowser/internal/application/port/output"
	"voicebrowser/internal/domain/entity"
)

const stepPause = 200 * time.Millisecond

// Runner executes action sequences in strict order. A failed step is
// recorded and the run continues; steps never run in parallel.
type Runner struct {
	browser output.BrowserPort
	log     *zap.Logger
}

func NewRunner(browser output.BrowserPort, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{browser: browser, log: log.Named("workflow")}
}

// Run executes every action and returns exactly one step entry per input.
// Cancelling the context marks the remaining steps as failed without
// executing them.
func (r *Runner) Run(ctx context.Context, actions []entity.Action) entity.WorkflowResult {
	result := entity.WorkflowResult{
		Steps: make([]entity.StepResult, 0, len(actions)),
	}

	for i, action := range actions {
		if err := ctx.Err(); err != nil {
			result.Steps = append(result.Steps, entity.StepResult{
				Index:   i,
				Action:  action,
				Result:  entity.Failure(action, "workflow cancelled: "+err.Error()),
				Success: false,
			})
			continue
		}

		stepResult := r.browser.Execute(ctx, action)
		result.Steps = append(result.Steps, entity.StepResult{
			Index:   i,
			Action:  action,
			Result:  stepResult,
			Success: stepResult.Success,
		})
		if stepResult.Success {
			result.Succeeded++
		} else {
			r.log.Warn("workflow step failed",
				zap.Int("step", i),
				zap.String("kind", string(action.Kind)),
				zap.String("error", stepResult.Error))
		}

		// Brief settle pause between steps; pages often mutate right after
		// an interaction.
		if i < len(actions)-1 {
			select {
			case <-ctx.Done():
			case <-time.After(stepPause):
			}
		}
	}

	r.log.Info("workflow finished",
		zap.Int("steps", len(result.Steps)),
		zap.Int("succeeded", result.Succeeded))
	return result
}
