// Package trace records what a conversion run is doing.
//
// Spans mark the run (ScopeDriver), the stages of the run (ScopePass), the
// file tasks (ScopeFile) and single blocks (ScopeBlock). The level decides
// which scopes are emitted:
//
//	off     nothing
//	error   nothing until a crash dump is requested
//	phase   driver and pass spans
//	detail  file spans as well
//	debug   everything, including per-block notes
//
// Tracers travel through the pipeline in the context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopeFile, "file:"+path, parent)
//	defer span.End("")
package trace
