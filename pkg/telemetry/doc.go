// Package telemetry measures the diff engine.
//
// Metrics wraps a set of Prometheus collectors registered through
// promauto; Differ runs vdom.Diff, vdom.DiffWithSkip and livetree
// application inside OpenTelemetry spans and feeds the collectors.
// A nil *Metrics is valid and records nothing.
package telemetry
