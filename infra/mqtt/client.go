// Package mqtt publishes planning events to an MQTT broker using Eclipse
// Paho. Plans go to <topic_prefix>/plans and stops to <topic_prefix>/stops.
package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/evroute/core/events"
	coremon "github.com/kilianp07/evroute/core/monitoring"
	"github.com/kilianp07/evroute/infra/logger"
)

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Broker      string          `json:"broker"`
	ClientID    string          `json:"client_id"`
	Username    string          `json:"username"`
	Password    string          `json:"password"`
	TopicPrefix string          `json:"topic_prefix"`
	UseTLS      bool            `json:"use_tls"`
	ClientCert  string          `json:"client_cert"`
	ClientKey   string          `json:"client_key"`
	CABundle    string          `json:"ca_bundle"`
	QoS         map[string]byte `json:"qos"`
	Retain      bool            `json:"retain"`
	LWTTopic    string          `json:"lwt_topic"`
	LWTPayload  string          `json:"lwt_payload"`
	LWTQoS      byte            `json:"lwt_qos"`
	MaxRetries  int             `json:"max_retries"`
	BackoffMS   int             `json:"backoff_ms"`
	TLSConfig   *tls.Config     `json:"-"`
}

// SetDefaults fills the topic prefix, client id and retry policy.
func (c *Config) SetDefaults() {
	if c.TopicPrefix == "" {
		c.TopicPrefix = "evroute"
	}
	c.TopicPrefix = strings.TrimSuffix(c.TopicPrefix, "/")
	if c.ClientID == "" {
		c.ClientID = "evroute-planner"
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.BackoffMS <= 0 {
		c.BackoffMS = 100
	}
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Publisher sends plan and stop events as JSON messages. It implements
// metrics.MetricsSink and metrics.StopRecorder.
type Publisher struct {
	cli        pahoClient
	prefix     string
	qos        map[string]byte
	retain     bool
	maxRetries int
	backoff    time.Duration
	logger     logger.Logger
}

// NewPublisher connects to the broker.
func NewPublisher(cfg Config) (*Publisher, error) {
	cfg.SetDefaults()
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	log := logger.New("mqtt_publisher")
	opts.OnConnect = func(paho.Client) { log.Infof("MQTT connected to %s", cfg.Broker) }
	opts.OnConnectionLost = func(_ paho.Client, err error) { log.Errorf("connection lost: %v", err) }
	opts.OnReconnecting = func(paho.Client, *paho.ClientOptions) { log.Warnf("reconnecting to MQTT broker") }

	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return &Publisher{
		cli:        c,
		prefix:     cfg.TopicPrefix,
		qos:        cfg.QoS,
		retain:     cfg.Retain,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
		logger:     log,
	}, nil
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	if cfg.LWTTopic != "" {
		opts.SetWill(cfg.LWTTopic, cfg.LWTPayload, cfg.LWTQoS, false)
	}
	return opts, nil
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caBytes) {
		return nil, fmt.Errorf("ca bundle %s has no certificates", c.CABundle)
	}
	return &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}

type planMessage struct {
	PlanID          string  `json:"plan_id"`
	Outcome         string  `json:"outcome"`
	Strategy        string  `json:"strategy"`
	Stops           int     `json:"stops"`
	TotalDistanceKm float64 `json:"total_distance_km"`
	TotalCost       float64 `json:"total_cost"`
	ChargingMinutes float64 `json:"charging_minutes"`
	TotalMinutes    float64 `json:"total_minutes"`
	Error           string  `json:"error,omitempty"`
	DurationMS      float64 `json:"duration_ms"`
	Timestamp       int64   `json:"timestamp"`
}

type stopMessage struct {
	PlanID          string  `json:"plan_id"`
	Index           int     `json:"index"`
	StationID       string  `json:"station_id"`
	DistanceKm      float64 `json:"distance_km"`
	ArrivalSoCPct   float64 `json:"arrival_soc_pct"`
	DepartureSoCPct float64 `json:"departure_soc_pct"`
	EnergyKWh       float64 `json:"energy_kwh"`
	ChargingMinutes float64 `json:"charging_minutes"`
	Cost            float64 `json:"cost"`
	Timestamp       int64   `json:"timestamp"`
}

// RecordPlan publishes the plan summary.
func (p *Publisher) RecordPlan(ev events.PlanEvent) error {
	msg := planMessage{
		PlanID:          ev.PlanID,
		Outcome:         ev.Outcome,
		Strategy:        ev.Strategy,
		Stops:           ev.Stops,
		TotalDistanceKm: ev.TotalDistanceKm,
		TotalCost:       ev.TotalCost,
		ChargingMinutes: ev.ChargingMinutes,
		TotalMinutes:    ev.TotalMinutes,
		DurationMS:      float64(ev.Duration.Microseconds()) / 1000,
		Timestamp:       ev.Time.UnixMilli(),
	}
	if ev.Err != nil {
		msg.Error = ev.Err.Error()
	}
	return p.publish("plans", ev.PlanID, msg)
}

// RecordStop publishes one selected stop.
func (p *Publisher) RecordStop(ev events.StopEvent) error {
	return p.publish("stops", ev.PlanID, stopMessage{
		PlanID:          ev.PlanID,
		Index:           ev.Index,
		StationID:       ev.StationID,
		DistanceKm:      ev.DistanceKm,
		ArrivalSoCPct:   ev.ArrivalSoCPct,
		DepartureSoCPct: ev.DepartureSoCPct,
		EnergyKWh:       ev.EnergyKWh,
		ChargingMinutes: ev.ChargingMinutes,
		Cost:            ev.Cost,
		Timestamp:       ev.Time.UnixMilli(),
	})
}

func (p *Publisher) publish(kind, planID string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	topic := p.prefix + "/" + kind
	qos := p.qos[kind]
	var publishErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		token := p.cli.Publish(topic, qos, p.retain, payload)
		token.Wait()
		if publishErr = token.Error(); publishErr == nil {
			p.logger.Debugf("published %s for plan %s", kind, planID)
			return nil
		}
		p.logger.Errorf("publish attempt %d to %s failed: %v", attempt+1, topic, publishErr)
		if attempt < p.maxRetries {
			time.Sleep(p.backoff * time.Duration(1<<attempt))
		}
	}
	coremon.CaptureException(publishErr, map[string]string{"module": "mqtt", "topic": topic, "plan_id": planID})
	return publishErr
}

// Disconnect gracefully closes the MQTT connection.
func (p *Publisher) Disconnect() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
