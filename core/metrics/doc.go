// Package metrics defines the sinks that record planning outcomes. Sinks
// such as PromSink and InfluxSink (infra/metrics) implement MetricsSink and
// optionally StopRecorder or CatalogRecorder. NewMetricsSink builds the
// configured sinks and combines several into a MultiSink.
package metrics
