package app

import (
	"context"
	"fmt"
	"github.com/clambin/go-common/slackbot"
	"github.com/clambin/go-common/taskmanager"
	"github.com/clambin/go-common/taskmanager/httpserver"
	promserver "github.com/clambin/go-common/taskmanager/prometheus"
	"github.com/clambin/icomfort-monitor/internal/bot"
	"github.com/clambin/icomfort-monitor/internal/climate"
	"github.com/clambin/icomfort-monitor/internal/collector"
	"github.com/clambin/icomfort-monitor/internal/health"
	"github.com/clambin/icomfort-monitor/internal/mqtt"
	"github.com/clambin/icomfort-monitor/internal/notifier"
	"github.com/clambin/icomfort-monitor/internal/poller"
	"github.com/clambin/icomfort-monitor/pkg/icomfort"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/slack-go/slack"
	"github.com/spf13/viper"
	"log/slog"
	"net/http"
)

// New connects to the iComfort service and returns the tasks that monitor the configured zone.
func New(ctx context.Context, cfg *viper.Viper, version string, registry prometheus.Registerer, logger *slog.Logger) (*taskmanager.Manager, error) {
	if registry != nil {
		registry.MustRegister(requestCounter, requestDuration)
	}
	entity, err := NewEntity(ctx, cfg, instrumentedHTTPClient(requestCounter, requestDuration), logger)
	if err != nil {
		return nil, err
	}
	logger.Info("icomfort-monitor started", slog.String("version", version), slog.String("zone", entity.Name()))
	return taskmanager.New(makeTasks(cfg, entity, version, registry, logger)...), nil
}

// NewEntity connects to the iComfort service and returns the climate entity for the configured system and zone.
func NewEntity(ctx context.Context, cfg *viper.Viper, httpClient *http.Client, logger *slog.Logger) (*climate.Entity, error) {
	units, err := icomfort.ParseUnitsPreference(cfg.GetString("icomfort.units"))
	if err != nil {
		return nil, err
	}
	serviceURL := cfg.GetString("icomfort.url")
	if serviceURL == "" {
		if serviceURL, err = icomfort.ServiceURL(cfg.GetString("icomfort.service")); err != nil {
			return nil, err
		}
	}
	options := []icomfort.Option{icomfort.WithLogger(logger.With(slog.String("component", "icomfort")))}
	if httpClient != nil {
		options = append(options, icomfort.WithHTTPClient(httpClient))
	}
	client, err := icomfort.New(ctx, icomfort.Config{
		Username:    cfg.GetString("icomfort.username"),
		Password:    cfg.GetString("icomfort.password"),
		URL:         serviceURL,
		SystemIndex: cfg.GetInt("icomfort.system"),
		ZoneIndex:   cfg.GetInt("icomfort.zone"),
		Units:       units,
	}, options...)
	if err != nil {
		return nil, fmt.Errorf("icomfort: %w", err)
	}

	climateCfg := climate.Config{Name: cfg.GetString("climate.name")}
	if cfg.IsSet("climate.minTemp") {
		minTemp := cfg.GetFloat64("climate.minTemp")
		climateCfg.MinTemp = &minTemp
	}
	if cfg.IsSet("climate.maxTemp") {
		maxTemp := cfg.GetFloat64("climate.maxTemp")
		climateCfg.MaxTemp = &maxTemp
	}
	return climate.New(client, climateCfg, logger.With(slog.String("component", "climate"))), nil
}

func makeTasks(cfg *viper.Viper, entity *climate.Entity, version string, registry prometheus.Registerer, l *slog.Logger) []taskmanager.Task {
	var tasks []taskmanager.Task

	// Notifiers
	token := cfg.GetString("slack.token")
	n := notifier.Notifiers{&notifier.SLogNotifier{Logger: l.With(slog.String("component", "notifier"))}}
	if token != "" {
		n = append(n, &notifier.SlackNotifier{
			Logger:      l.With(slog.String("component", "slack")),
			SlackSender: slack.New(token),
			Channel:     cfg.GetString("slack.channel"),
		})
	}

	// Poller
	p := poller.New(entity, cfg.GetDuration("poller.interval"), n, l.With(slog.String("component", "poller")))
	tasks = append(tasks, p)

	// Collector
	coll := &collector.Collector{Poller: p, Logger: l.With(slog.String("component", "collector"))}
	if registry != nil {
		registry.MustRegister(coll)
	}
	tasks = append(tasks, coll)

	// Prometheus Server
	tasks = append(tasks, promserver.New(promserver.WithAddr(cfg.GetString("exporter.addr"))))

	// Health Endpoint
	h := health.New(p, 2*cfg.GetDuration("poller.interval"), l.With(slog.String("component", "health")))
	tasks = append(tasks, h)
	r := http.NewServeMux()
	r.Handle("/health", h)
	tasks = append(tasks, httpserver.New(cfg.GetString("health.addr"), r))

	// MQTT
	if broker := cfg.GetString("mqtt.broker"); broker != "" {
		tasks = append(tasks, mqtt.New(p, cfg.GetString("climate.name"), mqtt.Config{
			Broker:          broker,
			Username:        cfg.GetString("mqtt.username"),
			Password:        cfg.GetString("mqtt.password"),
			Prefix:          cfg.GetString("mqtt.prefix"),
			DiscoveryPrefix: cfg.GetString("mqtt.discoveryPrefix"),
		}, l.With(slog.String("component", "mqtt"))))
	} else {
		l.Info("no mqtt broker configured. mqtt bridge will not run")
	}

	// Slackbot
	if token != "" {
		b := slackbot.New(
			token,
			slackbot.WithName("icomfort-monitor "+version),
			slackbot.WithLogger(l.With(slog.String("component", "slackbot"))),
		)
		tasks = append(tasks, b, bot.New(b, p, l.With(slog.String("component", "bot"))))
	}

	return tasks
}
