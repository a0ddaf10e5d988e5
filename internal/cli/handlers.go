package cli

import (
	"context"

	"github.com/AntonStoeckl/library-circulation/shell"
	"github.com/AntonStoeckl/library-circulation/shell/observable"
)

func commandOptions[C shell.Command](obs Observability) []observable.CommandOption[C] {
	options := []observable.CommandOption[C]{observable.WithCommandLogging[C](obs.Logger)}

	if obs.ContextualLogger != nil {
		options = append(options, observable.WithCommandContextualLogging[C](obs.ContextualLogger))
	}

	if obs.Metrics != nil {
		options = append(options, observable.WithCommandMetrics[C](obs.Metrics))
	}

	if obs.Tracing != nil {
		options = append(options, observable.WithCommandTracing[C](obs.Tracing))
	}

	return options
}

func queryOptions[Q shell.Query, R any](obs Observability) []observable.QueryOption[Q, R] {
	options := []observable.QueryOption[Q, R]{observable.WithQueryLogging[Q, R](obs.Logger)}

	if obs.ContextualLogger != nil {
		options = append(options, observable.WithQueryContextualLogging[Q, R](obs.ContextualLogger))
	}

	if obs.Metrics != nil {
		options = append(options, observable.WithQueryMetrics[Q, R](obs.Metrics))
	}

	if obs.Tracing != nil {
		options = append(options, observable.WithQueryTracing[Q, R](obs.Tracing))
	}

	return options
}

// retryOptions records retry metrics under the command's type when metrics are enabled.
func retryOptions(obs Observability, command shell.Command) []shell.RetryOption {
	if obs.Metrics == nil {
		return nil
	}

	return []shell.RetryOption{shell.WithMetrics(obs.Metrics, command.CommandType())}
}

// handleCommand runs core behind an observable.CommandWrapper and prints the outcome.
func handleCommand[C shell.Command](
	ctx context.Context,
	app *App,
	printer Printer,
	core shell.CoreCommandHandler[C],
	command C,
	data any,
) error {

	wrapper, err := observable.NewCommandWrapper(core, commandOptions[C](app.Observability)...)
	if err != nil {
		return printer.Error(err)
	}

	result, err := wrapper.Handle(ctx, command)
	if err != nil {
		return printer.Error(err)
	}

	return printer.Result(result, data)
}

// handleQuery runs core behind an observable.QueryWrapper and prints the read model.
func handleQuery[Q shell.Query, R any](
	ctx context.Context,
	app *App,
	printer Printer,
	core shell.QueryHandler[Q, R],
	query Q,
) error {

	wrapper, err := observable.NewQueryWrapper(core, queryOptions[Q, R](app.Observability)...)
	if err != nil {
		return printer.Error(err)
	}

	result, err := wrapper.Handle(ctx, query)
	if err != nil {
		return printer.Error(err)
	}

	return printer.Data(result)
}
