package framepipeline

import (
	"sync"
)

// =============================================================================
// Global Coordinator Helper (Singleton)
// =============================================================================

var (
	globalCoordinator *FrameCoordinator
	globalMu          sync.Mutex
)

// InitGlobalCoordinator creates the process-wide coordinator. Later calls are
// no-ops until ShutdownGlobalCoordinator. A nil config uses DefaultCoordinatorConfig.
func InitGlobalCoordinator(config *CoordinatorConfig) {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalCoordinator != nil {
		return // Already initialized
	}

	globalCoordinator = NewFrameCoordinator(config)
}

// GetGlobalCoordinator returns the global coordinator instance.
// It panics if InitGlobalCoordinator has not been called.
func GetGlobalCoordinator() *FrameCoordinator {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalCoordinator == nil {
		panic("GlobalCoordinator not initialized. Call InitGlobalCoordinator() first.")
	}
	return globalCoordinator
}

// ShutdownGlobalCoordinator removes every window from the global coordinator,
// joins its workers and forgets it.
func ShutdownGlobalCoordinator() {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalCoordinator != nil {
		globalCoordinator.RemoveAllWindows()
		globalCoordinator = nil
	}
}

// OpenWindow opens a window on the global coordinator.
// It returns nil if the pipe could not create the window.
func OpenWindow(pipe Pipe, name string, threadingModel string) *WindowHandle {
	return GetGlobalCoordinator().AddWindow(pipe, name, threadingModel)
}
