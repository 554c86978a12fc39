// Package bot lets Slack users check and change the thermostat.
package bot

import (
	"context"
	"errors"
	"fmt"
	"github.com/clambin/go-common/slackbot"
	"github.com/clambin/icomfort-monitor/internal/climate"
	"github.com/clambin/icomfort-monitor/internal/poller"
	"github.com/slack-go/slack"
	"log/slog"
	"strconv"
	"strings"
	"sync"
)

type Bot struct {
	slack   SlackBot
	poller  poller.Commander
	logger  *slog.Logger
	lock    sync.RWMutex
	update  poller.Update
	updated bool
}

//go:generate mockery --name SlackBot --with-expecter
type SlackBot interface {
	Register(name string, command slackbot.CommandFunc)
}

func New(slackBot SlackBot, p poller.Commander, logger *slog.Logger) *Bot {
	b := Bot{
		slack:  slackBot,
		poller: p,
		logger: logger,
	}
	slackBot.Register("status", b.ReportStatus)
	slackBot.Register("mode", b.SetMode)
	slackBot.Register("temperature", b.SetTemperature)
	slackBot.Register("fan", b.SetFanMode)
	slackBot.Register("away", b.SetAway)
	slackBot.Register("aux", b.SetAuxHeat)
	slackBot.Register("refresh", b.DoRefresh)
	return &b
}

// Run keeps track of the latest update, so ReportStatus can answer without calling the iComfort service.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Debug("started")
	defer b.logger.Debug("stopped")

	ch := b.poller.Subscribe()
	defer b.poller.Unsubscribe(ch)
	for {
		select {
		case <-ctx.Done():
			return nil
		case update := <-ch:
			b.lock.Lock()
			b.update = update
			b.updated = true
			b.lock.Unlock()
		}
	}
}

func (b *Bot) ReportStatus(_ context.Context, _ ...string) []slack.Attachment {
	b.lock.RLock()
	defer b.lock.RUnlock()

	if !b.updated {
		return []slack.Attachment{{
			Color: "bad",
			Text:  "no updates yet. please check back later",
		}}
	}

	return []slack.Attachment{{
		Color: "good",
		Title: b.update.State.Name + ":",
		Text:  formatState(b.update.State),
	}}
}

func formatState(state climate.State) string {
	lines := []string{
		fmt.Sprintf("temperature: %.1f%s", state.CurrentTemperature, state.TemperatureUnit),
		fmt.Sprintf("humidity: %.0f%%", state.CurrentHumidity),
		"mode: " + string(state.HVACMode) + " (" + string(state.HVACAction) + ")",
		"fan: " + string(state.FanMode),
	}
	if state.TargetTemperature != nil {
		lines = append(lines, fmt.Sprintf("target: %.1f%s", *state.TargetTemperature, state.TemperatureUnit))
	}
	if state.TargetTemperatureLow != nil && state.TargetTemperatureHigh != nil {
		lines = append(lines, fmt.Sprintf("target: %.1f-%.1f%s", *state.TargetTemperatureLow, *state.TargetTemperatureHigh, state.TemperatureUnit))
	}
	if state.AuxHeat {
		lines = append(lines, "aux heat: on")
	}
	if state.Away() {
		lines = append(lines, "away mode: on")
	}
	return strings.Join(lines, "\n")
}

func (b *Bot) SetMode(ctx context.Context, args ...string) []slack.Attachment {
	if len(args) != 1 {
		return usage("mode <off|heat|cool|heat_cool>")
	}
	mode := climate.HVACMode(strings.ToLower(args[0]))
	return b.do(ctx, "set hvac mode to "+string(mode), func(ctx context.Context, e *climate.Entity) error {
		return e.SetHVACMode(ctx, mode)
	})
}

func (b *Bot) SetTemperature(ctx context.Context, args ...string) []slack.Attachment {
	if len(args) < 1 || len(args) > 2 {
		return usage("temperature <target>|<low> <high>")
	}
	temperatures := make([]float64, len(args))
	for i, arg := range args {
		var err error
		if temperatures[i], err = strconv.ParseFloat(arg, 64); err != nil {
			return bad(fmt.Sprintf("invalid temperature: %q", arg))
		}
	}

	var req climate.TemperatureRequest
	var description string
	if len(temperatures) == 1 {
		req.Temperature = &temperatures[0]
		description = "set temperature to " + args[0]
	} else {
		req.Low, req.High = &temperatures[0], &temperatures[1]
		description = "set temperature range to " + args[0] + "-" + args[1]
	}
	return b.do(ctx, description, func(ctx context.Context, e *climate.Entity) error {
		return e.SetTemperature(ctx, req)
	})
}

func (b *Bot) SetFanMode(ctx context.Context, args ...string) []slack.Attachment {
	if len(args) != 1 {
		return usage("fan <auto|on|circulate>")
	}
	mode := climate.FanMode(strings.ToLower(args[0]))
	return b.do(ctx, "set fan mode to "+string(mode), func(ctx context.Context, e *climate.Entity) error {
		return e.SetFanMode(ctx, mode)
	})
}

func (b *Bot) SetAway(ctx context.Context, args ...string) []slack.Attachment {
	on, ok := parseOnOff(args...)
	if !ok {
		return usage("away <on|off>")
	}
	preset := climate.PresetNone
	if on {
		preset = climate.PresetAway
	}
	return b.do(ctx, "set preset mode to "+string(preset), func(ctx context.Context, e *climate.Entity) error {
		return e.SetPresetMode(ctx, preset)
	})
}

func (b *Bot) SetAuxHeat(ctx context.Context, args ...string) []slack.Attachment {
	on, ok := parseOnOff(args...)
	if !ok {
		return usage("aux <on|off>")
	}
	if on {
		return b.do(ctx, "turn aux heat on", func(ctx context.Context, e *climate.Entity) error {
			return e.TurnAuxHeatOn(ctx)
		})
	}
	return b.do(ctx, "turn aux heat off", func(ctx context.Context, e *climate.Entity) error {
		return e.TurnAuxHeatOff(ctx)
	})
}

func (b *Bot) DoRefresh(_ context.Context, _ ...string) []slack.Attachment {
	b.poller.Refresh()
	return []slack.Attachment{{
		Text: "refreshing iComfort data",
	}}
}

func (b *Bot) do(ctx context.Context, description string, command poller.Command) []slack.Attachment {
	err := b.poller.Do(ctx, description, command)
	if err == nil {
		return []slack.Attachment{{Color: "good", Text: description}}
	}
	if errors.Is(err, poller.ErrCommandIgnored) {
		return bad("away mode is active. cannot " + description)
	}
	b.logger.Warn("command failed", slog.String("command", description), slog.Any("err", err))
	return bad(err.Error())
}

func parseOnOff(args ...string) (on bool, ok bool) {
	if len(args) != 1 {
		return false, false
	}
	switch strings.ToLower(args[0]) {
	case "on":
		return true, true
	case "off":
		return false, true
	default:
		return false, false
	}
}

func usage(text string) []slack.Attachment {
	return bad("invalid command\nUsage: " + text)
}

func bad(text string) []slack.Attachment {
	return []slack.Attachment{{Color: "bad", Text: text}}
}
