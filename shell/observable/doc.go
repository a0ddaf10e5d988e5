// Package observable provides wrappers that instrument command and query handlers with metrics,
// tracing and logging, so that the handlers themselves only contain circulation logic.
//
// The wrappers are applied at wiring time, in cmd/circulation:
//
//	coreHandler := returnloan.NewCommandHandler(store)
//
//	handler, err := observable.NewCommandWrapper[returnloan.Command](
//		coreHandler,
//		observable.WithCommandMetrics[returnloan.Command](metricsCollector),
//		observable.WithCommandTracing[returnloan.Command](tracingCollector),
//		observable.WithCommandContextualLogging[returnloan.Command](contextualLogger),
//	)
//
//	result, err := handler.Handle(ctx, command)
//
// Every option is optional. A wrapper without options only delegates.
package observable
