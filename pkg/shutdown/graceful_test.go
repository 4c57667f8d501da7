package shutdown_test

import (
	"context"
	"os"
	"syscall"
	"testing"
	"time"

	"notesync/pkg/shutdown"
)

func sendTerm(t *testing.T) {
	t.Helper()

	process, err := os.FindProcess(os.Getpid())
	if err != nil {
		t.Fatalf("failed to find process: %v", err)
	}
	if err := process.Signal(syscall.SIGTERM); err != nil {
		t.Fatalf("failed to send signal: %v", err)
	}
}

func TestWaitExecutesHooks(t *testing.T) {
	hook1Called := make(chan struct{})
	hook2Called := make(chan struct{})

	waitDone := make(chan struct{})
	go func() {
		shutdown.Wait(context.Background(), time.Second,
			func(ctx context.Context) error {
				close(hook1Called)
				return nil
			},
			func(ctx context.Context) error {
				close(hook2Called)
				return nil
			},
		)
		close(waitDone)
	}()

	time.Sleep(100 * time.Millisecond)
	sendTerm(t)

	for name, ch := range map[string]chan struct{}{"hook 1": hook1Called, "hook 2": hook2Called, "wait": waitDone} {
		select {
		case <-ch:
		case <-time.After(2 * time.Second):
			t.Errorf("%s did not complete", name)
		}
	}
}

func TestWaitRespectsTimeout(t *testing.T) {
	waitDone := make(chan struct{})
	hookStarted := make(chan struct{})

	go func() {
		shutdown.Wait(context.Background(), 100*time.Millisecond,
			func(ctx context.Context) error {
				close(hookStarted)
				<-ctx.Done()
				time.Sleep(5 * time.Second) // hook ignores cancellation
				return nil
			},
		)
		close(waitDone)
	}()

	time.Sleep(100 * time.Millisecond)
	sendTerm(t)

	select {
	case <-hookStarted:
	case <-time.After(2 * time.Second):
		t.Fatal("hook was not started")
	}

	select {
	case <-waitDone:
	case <-time.After(2 * time.Second):
		t.Error("Wait did not return after timeout with a stuck hook")
	}
}
