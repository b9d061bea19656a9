// Package app assembles the planner, its journal, the station catalog and
// the HTTP API into a runnable service.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/kilianp07/evroute/api/plans"
	"github.com/kilianp07/evroute/api/stations"
	"github.com/kilianp07/evroute/config"
	"github.com/kilianp07/evroute/core/catalog"
	"github.com/kilianp07/evroute/core/events"
	coremetrics "github.com/kilianp07/evroute/core/metrics"
	"github.com/kilianp07/evroute/core/model"
	coremon "github.com/kilianp07/evroute/core/monitoring"
	"github.com/kilianp07/evroute/core/planlog"
	"github.com/kilianp07/evroute/core/planner"
	"github.com/kilianp07/evroute/infra/logger"
	"github.com/kilianp07/evroute/infra/metrics"
	"github.com/kilianp07/evroute/infra/monitoring"
	"github.com/kilianp07/evroute/infra/osmimport"
	"github.com/kilianp07/evroute/internal/eventbus"
)

// Service owns every long lived component of the planner host.
type Service struct {
	cfg     *config.Config
	Planner *planner.Planner
	// Planning is the journaled planner used by the API.
	Planning planner.Service
	Catalog  *catalog.MemoryCatalog
	Journal  planlog.Store
	bus      *eventbus.TypedBus[events.Event]
	sink     coremetrics.MetricsSink
	handler  http.Handler
	log      logger.Logger
}

// New builds the service from cfg. Nothing listens until Run.
func New(ctx context.Context, cfg *config.Config) (*Service, error) {
	log := logger.New("service")

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)

	bus := eventbus.NewTyped[events.Event]()
	p, err := planner.New(cfg.Planner,
		planner.WithLogger(logger.New("planner")),
		planner.WithPublisher(bus),
	)
	if err != nil {
		return nil, err
	}

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, err
	}

	journal, err := planlog.Open(cfg.Journal)
	if err != nil {
		coremetrics.CloseSink(sink)
		return nil, fmt.Errorf("journal: %w", err)
	}

	cat := catalog.NewMemoryCatalog()
	list, err := LoadStations(ctx, cfg.Catalog)
	if err == nil {
		err = cat.Replace(list)
	}
	if err != nil {
		_ = journal.Close()
		coremetrics.CloseSink(sink)
		return nil, fmt.Errorf("catalog: %w", err)
	}
	log.Infof("catalog loaded: %d stations", cat.Len())

	var recorder coremetrics.CatalogRecorder
	if r, ok := sink.(coremetrics.CatalogRecorder); ok {
		recorder = r
		if err := r.RecordCatalogSize(len(list), catalog.CountAvailable(list)); err != nil {
			log.Warnf("record catalog size: %v", err)
		}
	}

	svc := &Service{
		cfg:      cfg,
		Planner:  p,
		Planning: planlog.NewRecorder(p, journal, logger.New("planlog")),
		Catalog:  cat,
		Journal:  journal,
		bus:      bus,
		sink:     sink,
		log:      log,
	}
	mux := http.NewServeMux()
	plans.NewHandlers(svc.Planning, journal, cat, cfg.Server.Token, cfg.Server.PlanTimeout()).Register(mux)
	stations.NewHandlers(cat, cfg.Server.Token, recorder, planner.StrategyNames(), logger.New("stations")).Register(mux)
	svc.handler = mux
	return svc, nil
}

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler { return s.handler }

// Run serves the API and forwards planning events to the metrics sinks
// until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	collected := metrics.StartEventCollector(ctx, s.bus, s.sink, logger.New("metrics"))
	if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusPort, s.log); err != nil {
		return fmt.Errorf("prometheus server: %w", err)
	}

	srv := &http.Server{
		Addr:              s.cfg.Server.Address,
		Handler:           s.handler,
		ReadHeaderTimeout: s.cfg.Server.ReadTimeout(),
		ReadTimeout:       s.cfg.Server.ReadTimeout(),
		WriteTimeout:      s.cfg.Server.WriteTimeout(),
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	errCh := make(chan error, 1)
	go func() {
		defer coremon.Recover()
		s.log.Infof("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-errCh:
		runErr = err
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.log.Warnf("http shutdown: %v", err)
	}
	s.bus.Close()
	<-collected
	return runErr
}

// Close releases the journal, sinks and monitor.
func (s *Service) Close() error {
	s.bus.Close()
	coremetrics.CloseSink(s.sink)
	coremon.Flush(2 * time.Second)
	return s.Journal.Close()
}

// LoadStations reads the configured snapshot. No path yields an empty list.
func LoadStations(ctx context.Context, cfg config.CatalogConfig) ([]model.Station, error) {
	switch {
	case cfg.Path == "":
		return nil, nil
	case cfg.Format == "osm":
		return osmimport.ImportFile(ctx, cfg.Path, osmimport.Options{DefaultPowerKW: cfg.DefaultPowerKW})
	default:
		return catalog.LoadFile(cfg.Path, cfg.Format)
	}
}
