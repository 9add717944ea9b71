package app

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/courtside-app/courtside/internal/channel"
	"github.com/courtside-app/courtside/internal/channel/phoenix"
	"github.com/courtside-app/courtside/internal/config"
	"github.com/courtside-app/courtside/internal/event"
	"github.com/courtside-app/courtside/internal/logging"
	"github.com/courtside-app/courtside/internal/metrics"
	"github.com/courtside-app/courtside/internal/realtime"
)

// Module provides every long-lived component. It expects a *config.Config
// to be supplied.
var Module = fx.Module("courtside",
	fx.Provide(
		NewLogger,
		NewBus,
		NewPhoenixClient,
		NewProvider,
		NewCoordinator,
		NewCollector,
		NewMetricsServer,
	),
	fx.Invoke(
		registerMetricsServer,
		watchConfig,
	),
)

// New builds an application for cfg. Extra options are appended, which lets
// callers populate components or decorate the provider.
func New(cfg *config.Config, opts ...fx.Option) *fx.App {
	base := []fx.Option{
		fx.Supply(cfg),
		Module,
		fx.WithLogger(func(l *logging.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: l.WithComponent("fx").Slog()}
		}),
	}
	return fx.New(append(base, opts...)...)
}

// NewLogger opens the application log and closes it on stop.
func NewLogger(lc fx.Lifecycle, cfg *config.Config) (*logging.Logger, error) {
	logger, err := logging.NewLogger(cfg.Logging.Dir, cfg.Logging.Level,
		logging.WithRotation(cfg.Logging.MaxSizeMB, cfg.Logging.MaxBackups))
	if err != nil {
		return nil, err
	}
	lc.Append(fx.StopHook(logger.Close))
	return logger, nil
}

// NewBus creates the event bus shared by the coordinator, metrics and UI.
func NewBus(logger *logging.Logger) *event.Bus {
	return event.NewBus(logger)
}

// NewPhoenixClient creates the backend client. The socket is dialled on the
// first subscription and closed on stop.
func NewPhoenixClient(lc fx.Lifecycle, cfg *config.Config, logger *logging.Logger) (*phoenix.Client, error) {
	client, err := phoenix.New(cfg.Backend.URL,
		phoenix.WithAPIKey(cfg.Backend.APIKey),
		phoenix.WithSchema(cfg.Backend.Schema),
		phoenix.WithHeartbeatInterval(cfg.Backend.HeartbeatInterval()),
		phoenix.WithDialTimeout(cfg.Backend.DialTimeout()),
		phoenix.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.StopHook(client.Shutdown))
	return client, nil
}

// NewProvider exposes the backend client as the coordinator's channel
// provider. Tests replace it with fx.Decorate.
func NewProvider(client *phoenix.Client) channel.Provider {
	return client
}

// CoordinatorParams are the dependencies of NewCoordinator.
type CoordinatorParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Provider  channel.Provider
	Logger    *logging.Logger
	Bus       *event.Bus
}

// NewCoordinator creates the subscription coordinator and runs its drain
// loop for the lifetime of the application.
func NewCoordinator(p CoordinatorParams) *realtime.Coordinator {
	rt := p.Config.Realtime
	coord := realtime.New(p.Provider,
		realtime.WithLogger(p.Logger),
		realtime.WithBus(p.Bus),
		realtime.WithMaxRetries(rt.MaxRetries),
		realtime.WithBaseDelay(rt.BaseDelay()),
		realtime.WithAdmissionTimeout(rt.AdmissionTimeout()),
		realtime.WithInterAdmissionDelay(rt.InterAdmissionDelay()),
		realtime.WithDefaultPriority(rt.DefaultPriority),
		realtime.WithDefaultScope(rt.DefaultScope),
	)
	p.Lifecycle.Append(fx.Hook{
		// The start context expires once startup completes; the drain loop
		// must outlive it.
		OnStart: func(context.Context) error { return coord.Start(context.Background()) },
		OnStop:  func(context.Context) error { return coord.Stop() },
	})
	return coord
}

// NewCollector creates the metrics collector and attaches it to the bus.
func NewCollector(lc fx.Lifecycle, coord *realtime.Coordinator, bus *event.Bus) *metrics.Collector {
	c := metrics.NewCollector(coord)
	c.Attach(bus)
	lc.Append(fx.StopHook(c.Detach))
	return c
}

// NewMetricsServer builds the /metrics server from config. It only
// listens when metrics are enabled.
func NewMetricsServer(cfg *config.Config, c *metrics.Collector, logger *logging.Logger) *metrics.Server {
	return metrics.NewServer(cfg.Metrics.ListenAddr, c, logger)
}

func registerMetricsServer(lc fx.Lifecycle, cfg *config.Config, srv *metrics.Server) {
	if !cfg.Metrics.Enabled {
		return
	}
	lc.Append(fx.Hook{
		OnStart: srv.Start,
		OnStop:  srv.Stop,
	})
}

func watchConfig(logger *logging.Logger) {
	config.Watch(logger)
}
