package health

import (
	"context"
	"fmt"
	"runtime"
)

// GoroutineCountCheck fails when the process has more goroutines than limit,
// a cheap proxy for leaks in long-running services.
func GoroutineCountCheck(limit int) CheckFunc {
	return func(context.Context) error {
		if n := runtime.NumGoroutine(); n > limit {
			return fmt.Errorf("%d goroutines exceed limit %d", n, limit)
		}
		return nil
	}
}
