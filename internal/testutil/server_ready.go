package testutil

import (
	"context"
	"testing"
	"time"
)

// WaitForCleanup ждёт пока cleanup condition будет выполнено (polling с timeout).
// Используется для явной проверки cleanup после disconnect в integration тестах.
//
// Пример:
//
//	client.Close()
//	testutil.WaitForCleanup(t, func() bool {
//	    // Проверяем что сервер готов принимать новые подключения
//	    return canConnectTo(addr)
//	}, 5*time.Second)
func WaitForCleanup(t testing.TB, check func() bool, timeout time.Duration) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.Fatalf("cleanup timeout: condition not met within %v", timeout)
		case <-ticker.C:
			if check() {
				return
			}
		}
	}
}
