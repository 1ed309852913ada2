// internal/core/ports/task_enqueuer.go
package ports

import (
	"context"

	"github.com/hibiken/asynq"
)

// TaskEnqueuer defines the background task queue port.
// *asynq.Client satisfies it directly.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}
