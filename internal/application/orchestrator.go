package application

import (
	"context"
	"fmt"
	"strings"

	"taskbridge-mcp-server/internal/domain"
)

// WorkflowStep is one service operation of a multi-service workflow.
// Run returns the rendered confirmation of the step.
type WorkflowStep struct {
	Name string
	Run  func(ctx context.Context) (string, error)
}

// Orchestrator runs workflow steps strictly in order. A failing step aborts
// the workflow; earlier steps are neither undone nor retried.
type Orchestrator struct {
	logger *StructuredLogger
}

// NewOrchestrator creates a new orchestrator.
func NewOrchestrator(logger *StructuredLogger) *Orchestrator {
	if logger == nil {
		logger = NewDiscardLogger()
	}
	return &Orchestrator{logger: logger}
}

// Run executes steps sequentially. On success the response holds headline
// followed by each step's text, separated by blank lines. On failure the
// error names the failed step and wraps its cause.
func (o *Orchestrator) Run(ctx context.Context, headline string, steps ...WorkflowStep) (*domain.ToolResponse, error) {
	parts := make([]string, 0, len(steps)+1)
	parts = append(parts, headline)

	for i, step := range steps {
		text, err := step.Run(ctx)
		if err != nil {
			o.logger.LogError("workflow step failed", err, map[string]interface{}{
				"step":      step.Name,
				"position":  i + 1,
				"completed": i,
			})
			return nil, fmt.Errorf("%s failed: %w", step.Name, err)
		}

		o.logger.LogDebug("workflow step completed", map[string]interface{}{
			"step":     step.Name,
			"position": i + 1,
		})
		parts = append(parts, text)
	}

	return domain.TextResponse(strings.Join(parts, "\n\n")), nil
}
