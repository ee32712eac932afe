package telemetry

import (
	"context"
	"fmt"
	"os"

	"github.com/grafana/pyroscope-go"
	"go.uber.org/zap"
)

// ProfilerConfig holds continuous profiling configuration
type ProfilerConfig struct {
	Enabled         bool
	ServerAddress   string
	ApplicationName string
}

// Profiler pushes CPU, heap and goroutine profiles to Pyroscope
type Profiler struct {
	profiler *pyroscope.Profiler
	logger   *zap.Logger
}

// NewProfiler starts the Pyroscope profiler when enabled
func NewProfiler(cfg ProfilerConfig, logger *zap.Logger) (*Profiler, error) {
	p := &Profiler{logger: logger}
	if !cfg.Enabled {
		return p, nil
	}

	tags := map[string]string{}
	if hostname := os.Getenv("HOSTNAME"); hostname != "" {
		tags["hostname"] = hostname
	}

	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: cfg.ApplicationName,
		ServerAddress:   cfg.ServerAddress,
		Logger:          &pyroscopeLogger{logger: logger.Named("pyroscope").Sugar()},
		Tags:            tags,
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
			pyroscope.ProfileMutexDuration,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start Pyroscope profiler: %w", err)
	}
	p.profiler = profiler

	logger.Info("Pyroscope profiler started",
		zap.String("server_address", cfg.ServerAddress),
		zap.String("application_name", cfg.ApplicationName),
	)
	return p, nil
}

// IsEnabled reports whether profiles are being pushed
func (p *Profiler) IsEnabled() bool {
	return p != nil && p.profiler != nil
}

// Stop flushes and stops the profiler
func (p *Profiler) Stop(context.Context) error {
	if !p.IsEnabled() {
		return nil
	}
	if err := p.profiler.Stop(); err != nil {
		return fmt.Errorf("failed to stop profiler: %w", err)
	}
	return nil
}

// WithProfileLabels runs fn with pyroscope labels attached to the goroutine
// so hot paths such as order placement can be isolated in flame graphs.
func WithProfileLabels(ctx context.Context, fn func(context.Context), keyValues ...string) {
	if len(keyValues)%2 != 0 {
		keyValues = keyValues[:len(keyValues)-1]
	}
	pyroscope.TagWrapper(ctx, pyroscope.Labels(keyValues...), fn)
}

type pyroscopeLogger struct {
	logger *zap.SugaredLogger
}

func (l *pyroscopeLogger) Infof(format string, args ...any)  { l.logger.Infof(format, args...) }
func (l *pyroscopeLogger) Debugf(format string, args ...any) { l.logger.Debugf(format, args...) }
func (l *pyroscopeLogger) Errorf(format string, args ...any) { l.logger.Errorf(format, args...) }
