// Package trace records what the generator is doing, for diagnosing slow
// or stuck runs.
//
// # Usage
//
//	cbridge gen --trace=- --trace-level=detail
//	cbridge gen --trace=run.ndjson --trace-mode=both
//
// # Tracers
//
//   - Nop: tracing disabled, no allocations
//   - StreamTracer: writes each event as it happens (text or NDJSON)
//   - RingTracer: keeps the last N events for a dump after a crash
//   - MultiTracer: fans out to several tracers
//
// # Levels and scopes
//
// A level selects the scopes that are emitted:
//
//   - LevelPhase: ScopeDriver (the command) and ScopePass (load, generate, write)
//   - LevelDetail: adds ScopeModule (one span per generated module)
//   - LevelDebug: adds ScopeNode (one span per wrapped class)
//
// # Context propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "load", trace.CurrentSpan(ctx).SpanID)
//	defer span.End("")
//	ctx = trace.WithSpanContext(ctx, trace.SpanContext{SpanID: span.ID()})
package trace
