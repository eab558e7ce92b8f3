// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about pipeline execution, declutter passes, frame builds,
// and cache operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, DataDog, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetDeclutterHooks(&myDeclutterHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Declutter().OnRecomputeStart(ctx, nodeCount)
//	// ... run selection ...
//	observability.Declutter().OnRecomputeComplete(ctx, mode, placed, duration)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Declutter Hooks
// =============================================================================

// DeclutterHooks receives events from label declutter passes.
type DeclutterHooks interface {
	// OnRecomputeStart records the start of a visible-label recomputation.
	OnRecomputeStart(ctx context.Context, nodeCount int)

	// OnRecomputeComplete records a finished recomputation. Mode names the
	// collision strategy that ran ("exact" or "spatial"), placed is the
	// number of labels admitted.
	OnRecomputeComplete(ctx context.Context, mode string, placed int, duration time.Duration)

	// OnRecomputeThrottled records a recomputation deferred by the throttle window.
	OnRecomputeThrottled(ctx context.Context)
}

// =============================================================================
// Render Hooks
// =============================================================================

// RenderHooks receives events from frame building and sinks.
type RenderHooks interface {
	// OnFrameBuilt records a completed frame build.
	OnFrameBuilt(ctx context.Context, nodeCount, edgeCount, labelCount int, duration time.Duration)

	// OnSinkStart records the start of an artifact render.
	OnSinkStart(ctx context.Context, format string)

	// OnSinkComplete records a finished artifact render.
	OnSinkComplete(ctx context.Context, format string, size int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// Server Hooks
// =============================================================================

// ServerHooks receives events from the preview server.
type ServerHooks interface {
	// OnRequest records an incoming HTTP request.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records a completed HTTP response.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)

	// OnLiveSession records a websocket session opening or closing.
	OnLiveSession(ctx context.Context, sessionID string, open bool)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopDeclutterHooks is a no-op implementation of DeclutterHooks.
type NoopDeclutterHooks struct{}

func (NoopDeclutterHooks) OnRecomputeStart(context.Context, int) {}
func (NoopDeclutterHooks) OnRecomputeComplete(context.Context, string, int, time.Duration) {
}
func (NoopDeclutterHooks) OnRecomputeThrottled(context.Context) {}

// NoopRenderHooks is a no-op implementation of RenderHooks.
type NoopRenderHooks struct{}

func (NoopRenderHooks) OnFrameBuilt(context.Context, int, int, int, time.Duration)      {}
func (NoopRenderHooks) OnSinkStart(context.Context, string)                             {}
func (NoopRenderHooks) OnSinkComplete(context.Context, string, int, time.Duration, error) {
}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopServerHooks is a no-op implementation of ServerHooks.
type NoopServerHooks struct{}

func (NoopServerHooks) OnRequest(context.Context, string, string)                        {}
func (NoopServerHooks) OnResponse(context.Context, string, string, int, time.Duration)   {}
func (NoopServerHooks) OnLiveSession(context.Context, string, bool)                      {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	declutterHooks DeclutterHooks = NoopDeclutterHooks{}
	renderHooks    RenderHooks    = NoopRenderHooks{}
	cacheHooks     CacheHooks     = NoopCacheHooks{}
	serverHooks    ServerHooks    = NoopServerHooks{}
	hooksMu        sync.RWMutex
)

// SetDeclutterHooks registers custom declutter hooks.
// This should be called once at application startup before any declutter passes.
func SetDeclutterHooks(h DeclutterHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		declutterHooks = h
	}
}

// SetRenderHooks registers custom render hooks.
// This should be called once at application startup before any frames are built.
func SetRenderHooks(h RenderHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		renderHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetServerHooks registers custom server hooks.
// This should be called once at application startup before the server starts.
func SetServerHooks(h ServerHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		serverHooks = h
	}
}

// Declutter returns the registered declutter hooks.
func Declutter() DeclutterHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return declutterHooks
}

// Render returns the registered render hooks.
func Render() RenderHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return renderHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Server returns the registered server hooks.
func Server() ServerHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return serverHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	declutterHooks = NoopDeclutterHooks{}
	renderHooks = NoopRenderHooks{}
	cacheHooks = NoopCacheHooks{}
	serverHooks = NoopServerHooks{}
}
