// Package orchestrator は複数エンティティにまたがる業務フローを順序付きステップとして実行します。
//
// 各ステップは事後条件が既に満たされていればスキップされるため、途中で失敗したフローは
// 同じ入力で再実行すれば残りのステップから再開できます。失敗時に適用済みステップを
// 自動で取り消すことはありません。
package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/ogurasousui/codex-crm/internal/core/shared"
	"github.com/rs/zerolog"
)

// ErrWorkflowFailed はいずれかのステップが失敗したことを表します。
var ErrWorkflowFailed = errors.New("orchestrator: workflow failed")

// Step はワークフローの 1 ステップです。
// Done が true を返した場合 Apply は呼ばれません。Done が nil の場合は常に Apply します。
type Step struct {
	Name  string
	Done  func(ctx context.Context) (bool, error)
	Apply func(ctx context.Context) error
}

// Workflow は名前付きのステップ列です。
type Workflow struct {
	Name  string
	Steps []Step
}

// Result はワークフロー実行結果です。
type Result struct {
	Workflow string
	Applied  []string
	Skipped  []string
	// RolledBack は単一トランザクションで実行したフローが失敗し、適用済みステップも取り消されたことを表します。
	RolledBack bool
}

// StepError は失敗したステップと原因を保持します。
type StepError struct {
	Workflow string
	Step     string
	Err      error
	Result   *Result
}

func (e *StepError) Error() string {
	return fmt.Sprintf("orchestrator: workflow %s failed at step %s: %v", e.Workflow, e.Step, e.Err)
}

// Unwrap は ErrWorkflowFailed と原因の両方を返します。
func (e *StepError) Unwrap() []error {
	return []error{ErrWorkflowFailed, e.Err}
}

// Engine はワークフローを実行します。
type Engine struct {
	tx     shared.TransactionManager
	atomic bool
}

// NewEngine は Engine を生成します。atomic が true の場合はワークフロー全体を 1 トランザクションで実行します。
func NewEngine(tx shared.TransactionManager, atomic bool) *Engine {
	if tx == nil {
		tx = shared.NoopTransactionManager{}
	}
	return &Engine{tx: tx, atomic: atomic}
}

// Run は wf のステップを順に実行します。失敗時は *StepError を返し、それ以降のステップは実行しません。
func (e *Engine) Run(ctx context.Context, wf Workflow) (*Result, error) {
	result := &Result{Workflow: wf.Name}
	logger := zerolog.Ctx(ctx).With().Str("workflow", wf.Name).Logger()

	runSteps := func(ctx context.Context, within func(context.Context, func(context.Context) error) error) error {
		for _, step := range wf.Steps {
			applied := false
			err := within(ctx, func(stepCtx context.Context) error {
				if step.Done != nil {
					done, err := step.Done(stepCtx)
					if err != nil {
						return err
					}
					if done {
						return nil
					}
				}
				if err := step.Apply(stepCtx); err != nil {
					return err
				}
				applied = true
				return nil
			})
			if err != nil {
				logger.Warn().Err(err).Str("step", step.Name).Msg("workflow step failed")
				return &StepError{Workflow: wf.Name, Step: step.Name, Err: err, Result: result}
			}
			if applied {
				result.Applied = append(result.Applied, step.Name)
				logger.Debug().Str("step", step.Name).Msg("workflow step applied")
			} else {
				result.Skipped = append(result.Skipped, step.Name)
				logger.Debug().Str("step", step.Name).Msg("workflow step skipped")
			}
		}
		return nil
	}

	var err error
	if e.atomic {
		err = e.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
			return runSteps(txCtx, func(ctx context.Context, fn func(context.Context) error) error {
				return fn(ctx)
			})
		})
		if err != nil {
			result.RolledBack = true
		}
	} else {
		err = runSteps(ctx, e.tx.WithinReadWrite)
	}
	if err != nil {
		var stepErr *StepError
		if errors.As(err, &stepErr) {
			return result, stepErr
		}
		return result, &StepError{Workflow: wf.Name, Step: "commit", Err: err, Result: result}
	}

	logger.Info().
		Strs("applied", result.Applied).
		Strs("skipped", result.Skipped).
		Msg("workflow completed")
	return result, nil
}
