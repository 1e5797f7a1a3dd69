// Package middleware provides observability observers for the
// navigation machine.
//
// Both observers implement nav.Observer and are registered through
// nav.WithObserver:
//
//	m := nav.New("/",
//	    nav.WithObserver(
//	        middleware.Prometheus(),
//	        middleware.OpenTelemetry(),
//	    ),
//	)
//
// Prometheus records transition counters and a duration histogram;
// OpenTelemetry opens a span per navigation attempt. Hooks run
// synchronously on the navigating goroutine, so observers keep their
// work cheap and never call back into the machine.
package middleware
