package telemetry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBConfig holds database instrumentation configuration
type DBConfig struct {
	TraceEnabled    bool
	LogFullSQL      bool
	SlowQueryThresh time.Duration
	DBSystem        string // postgresql or sqlite
}

const startTimeKey = "telemetry:start"

// DBInstrumentation is a gorm plugin that records query latency, flags slow
// queries and exposes connection pool gauges. When tracing is enabled it also
// installs otelgorm.
type DBInstrumentation struct {
	config   DBConfig
	logger   *zap.Logger
	queries  metric.Int64Counter
	duration metric.Float64Histogram
	slow     metric.Int64Counter
	meter    metric.Meter
}

// NewDBInstrumentation registers the query instruments on meter
func NewDBInstrumentation(meter metric.Meter, cfg DBConfig, logger *zap.Logger) (*DBInstrumentation, error) {
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}
	if cfg.DBSystem == "" {
		cfg.DBSystem = "postgresql"
	}

	queries, err := meter.Int64Counter("db_client_queries_total",
		metric.WithDescription("Database statements executed"))
	if err != nil {
		return nil, fmt.Errorf("db queries counter: %w", err)
	}
	duration, err := meter.Float64Histogram("db_client_query_duration_seconds",
		metric.WithDescription("Database statement latency"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1))
	if err != nil {
		return nil, fmt.Errorf("db duration histogram: %w", err)
	}
	slow, err := meter.Int64Counter("db_client_slow_queries_total",
		metric.WithDescription("Statements slower than the configured threshold"))
	if err != nil {
		return nil, fmt.Errorf("db slow query counter: %w", err)
	}

	return &DBInstrumentation{
		config:   cfg,
		logger:   logger,
		queries:  queries,
		duration: duration,
		slow:     slow,
		meter:    meter,
	}, nil
}

// Name implements gorm.Plugin
func (d *DBInstrumentation) Name() string {
	return "storefront:telemetry"
}

// Initialize implements gorm.Plugin
func (d *DBInstrumentation) Initialize(db *gorm.DB) error {
	if d.config.TraceEnabled {
		opts := []otelgorm.Option{otelgorm.WithDBName(d.config.DBSystem)}
		if !d.config.LogFullSQL {
			opts = append(opts, otelgorm.WithoutQueryVariables())
		}
		if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
			return fmt.Errorf("register otelgorm: %w", err)
		}
	}

	cb := db.Callback()
	hooks := []struct {
		op     string
		before func(string) error
		after  func(string) error
	}{
		{"create", cbRegister(cb.Create().Before("gorm:create"), d.start), cbRegister(cb.Create().After("gorm:create"), d.finish("create"))},
		{"query", cbRegister(cb.Query().Before("gorm:query"), d.start), cbRegister(cb.Query().After("gorm:query"), d.finish("select"))},
		{"update", cbRegister(cb.Update().Before("gorm:update"), d.start), cbRegister(cb.Update().After("gorm:update"), d.finish("update"))},
		{"delete", cbRegister(cb.Delete().Before("gorm:delete"), d.start), cbRegister(cb.Delete().After("gorm:delete"), d.finish("delete"))},
		{"row", cbRegister(cb.Row().Before("gorm:row"), d.start), cbRegister(cb.Row().After("gorm:row"), d.finish("row"))},
		{"raw", cbRegister(cb.Raw().Before("gorm:raw"), d.start), cbRegister(cb.Raw().After("gorm:raw"), d.finish("raw"))},
	}
	for _, h := range hooks {
		if err := h.before("telemetry:before_" + h.op); err != nil {
			return err
		}
		if err := h.after("telemetry:after_" + h.op); err != nil {
			return err
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}
	return d.observePool(sqlDB)
}

type callbackRegistrar interface {
	Register(name string, fn func(*gorm.DB)) error
}

func cbRegister(p callbackRegistrar, fn func(*gorm.DB)) func(string) error {
	return func(name string) error {
		if err := p.Register(name, fn); err != nil {
			return fmt.Errorf("register %s: %w", name, err)
		}
		return nil
	}
}

func (d *DBInstrumentation) start(db *gorm.DB) {
	db.InstanceSet(startTimeKey, time.Now())
}

func (d *DBInstrumentation) finish(operation string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		v, ok := db.InstanceGet(startTimeKey)
		if !ok {
			return
		}
		started, ok := v.(time.Time)
		if !ok {
			return
		}
		ctx := db.Statement.Context
		if ctx == nil {
			ctx = context.Background()
		}
		d.record(ctx, operation, db.Statement.Table, time.Since(started), db.Error)
	}
}

func (d *DBInstrumentation) record(ctx context.Context, operation, table string, elapsed time.Duration, err error) {
	status := "ok"
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		status = "error"
	}
	attrs := metric.WithAttributes(
		attribute.String("db.operation", operation),
		attribute.String("db.table", table),
		attribute.String("status", status),
	)
	d.queries.Add(ctx, 1, attrs)
	d.duration.Record(ctx, elapsed.Seconds(), attrs)

	if elapsed < d.config.SlowQueryThresh {
		return
	}
	d.slow.Add(ctx, 1, metric.WithAttributes(attribute.String("db.table", table)))
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(
		attribute.Bool("db.slow_query", true),
		attribute.Int64("db.duration_ms", elapsed.Milliseconds()),
	)
	d.logger.Warn("Slow query",
		zap.String("operation", operation),
		zap.String("table", table),
		zap.Duration("elapsed", elapsed),
	)
}

// observePool exports sql.DBStats as observable gauges
func (d *DBInstrumentation) observePool(sqlDB *sql.DB) error {
	open, err := d.meter.Int64ObservableGauge("db_client_connections_open",
		metric.WithDescription("Open connections, in use and idle"))
	if err != nil {
		return err
	}
	inUse, err := d.meter.Int64ObservableGauge("db_client_connections_in_use")
	if err != nil {
		return err
	}
	waits, err := d.meter.Int64ObservableCounter("db_client_connections_wait_total",
		metric.WithDescription("Connections waited for because the pool was exhausted"))
	if err != nil {
		return err
	}
	_, err = d.meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := sqlDB.Stats()
		o.ObserveInt64(open, int64(stats.OpenConnections))
		o.ObserveInt64(inUse, int64(stats.InUse))
		o.ObserveInt64(waits, stats.WaitCount)
		return nil
	}, open, inUse, waits)
	return err
}
