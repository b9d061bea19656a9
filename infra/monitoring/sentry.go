// Package monitoring reports planner and journal failures to Sentry.
package monitoring

import (
	"context"
	"errors"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/kilianp07/evroute/config"
	coremon "github.com/kilianp07/evroute/core/monitoring"
)

// NewSentryMonitor builds a hub of its own from cfg so tests and hosts never
// share the global one. An empty DSN yields a NopMonitor.
func NewSentryMonitor(cfg config.SentryConfig) (coremon.Monitor, error) {
	if cfg.DSN == "" {
		return coremon.NopMonitor{}, nil
	}
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		TracesSampleRate: cfg.TracesSampleRate,
		Release:          cfg.Release,
		ServerName:       cfg.ServerName,
	})
	if err != nil {
		return nil, err
	}
	return &sentryMonitor{hub: sentry.NewHub(client, sentry.NewScope())}, nil
}

type sentryMonitor struct {
	hub *sentry.Hub
}

// CaptureException sends err with tags. Cancellations are the caller giving
// up and are not reported. Events sharing an outcome tag are grouped.
func (s *sentryMonitor) CaptureException(err error, tags map[string]string) {
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	s.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("service", "evroute")
		scope.SetTags(tags)
		if outcome := tags["outcome"]; outcome != "" {
			scope.SetFingerprint([]string{"{{ default }}", tags["module"], outcome})
		}
		s.hub.CaptureException(err)
	})
}

func (s *sentryMonitor) Recover() {
	r := recover()
	if r == nil {
		return
	}
	s.hub.Recover(r)
	s.hub.Flush(2 * time.Second)
	panic(r)
}

func (s *sentryMonitor) Flush(timeout time.Duration) { s.hub.Flush(timeout) }
