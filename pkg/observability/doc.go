/*
Package observability turns terminal lifecycle hooks into Prometheus metrics
and structured log lines.

	metrics := observability.NewMetrics(prometheus.NewRegistry())
	hooks := metrics.Hooks().Merge(observability.LogHooks(logger))
	term, _ := swap.New(swap.WithLifecycleHooks(hooks))
*/
package observability
