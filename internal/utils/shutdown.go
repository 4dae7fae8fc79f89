package utils

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

const shutdownGrace = 15 * time.Second

// ShutdownManager cancels the root context on SIGINT/SIGTERM and then runs
// registered cleanup tasks in order, each bounded by a shared grace period.
type ShutdownManager struct {
	cancel context.CancelFunc
	tasks  []func(context.Context) error
	mu     sync.Mutex
	done   chan struct{}
}

func NewShutdownManager(ctx context.Context) (context.Context, *ShutdownManager) {
	ctx, cancel := context.WithCancel(ctx)
	return ctx, &ShutdownManager{cancel: cancel, done: make(chan struct{})}
}

func (sm *ShutdownManager) Register(task func(context.Context) error) {
	sm.mu.Lock()
	sm.tasks = append(sm.tasks, task)
	sm.mu.Unlock()
}

func (sm *ShutdownManager) StartListening() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Printf("[SHUTDOWN] Received signal: %v", sig)
		sm.cancel()

		ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()

		sm.mu.Lock()
		tasks := sm.tasks
		sm.mu.Unlock()

		for _, task := range tasks {
			if err := task(ctx); err != nil {
				log.Printf("[SHUTDOWN] Cleanup error: %v", err)
			}
		}

		log.Println("[SHUTDOWN] Graceful shutdown complete")
		close(sm.done)
	}()
}

// Wait blocks until the shutdown sequence has finished.
func (sm *ShutdownManager) Wait() {
	<-sm.done
}
