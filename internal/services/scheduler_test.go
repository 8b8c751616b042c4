package services_test

import (
	"context"
	"testing"
	"time"

	"catalogsearch/internal/repositories"
	"catalogsearch/internal/services"

	"github.com/stretchr/testify/assert"
)

func TestRunSyncLoop_DisabledReturnsImmediately(t *testing.T) {
	rebuilder := newFakeRebuilder(false)
	monitor := newMonitor(repositories.NewMemorySnapshotRepository(), rebuilder)

	services.RunSyncLoop(context.Background(), monitor, 0, nil)

	monitor.Wait()
	assert.Equal(t, int32(0), rebuilder.calls.Load())
}

func TestRunSyncLoop_TriggersOnTicks(t *testing.T) {
	rebuilder := newFakeRebuilder(false)
	monitor := newMonitor(storeWithSnapshot(t, fixedNow), rebuilder)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		defer close(done)
		services.RunSyncLoop(ctx, monitor, 10*time.Millisecond, nil)
	}()

	assert.Eventually(t, func() bool {
		return rebuilder.calls.Load() >= 2
	}, 2*time.Second, 5*time.Millisecond)
	cancel()
	<-done
	monitor.Wait()

	assert.Equal(t, services.TriggerSchedule, <-rebuilder.triggers)
}
