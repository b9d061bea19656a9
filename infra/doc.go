// Package infra holds the adapters around the planner: log output, metric
// sinks, MQTT plan events, Sentry reporting and OpenStreetMap import. They
// depend on interfaces from core and never the other way round.
package infra
