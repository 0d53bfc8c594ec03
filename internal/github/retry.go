package github

import (
	"context"
	"errors"
	"time"
)

const (
	readAttempts = 3
	readDelay    = 2 * time.Second
)

// withRetry повторяет идемпотентный read-запрос с фиксированной задержкой между попытками.
// Запись и нотификации не повторяются, они best-effort на уровне сервисов.
func withRetry[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	var result T
	var err error
	for attempt := 1; attempt <= readAttempts; attempt++ {
		result, err = fn()
		if err == nil || errors.Is(err, ErrCommentNotFound) {
			return result, err
		}
		if attempt == readAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-time.After(readDelay):
		}
	}
	return result, err
}
