package main

import (
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/zonewatch/zonewatch"
	"github.com/zonewatch/zonewatch/internal/config"
	"github.com/zonewatch/zonewatch/pkg/logging"
	"github.com/zonewatch/zonewatch/pkg/mock"
	"github.com/zonewatch/zonewatch/pkg/wire"
)

// titler renders sensor type labels for terminal output.
var titler = cases.Title(language.English)

// newWatchCmd groups the stream-watching subcommands.
func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Subscribe to a push stream and print updates",
	}
	cmd.AddCommand(newWatchStatusCmd(), newWatchZoneCmd(), newWatchNotiCmd())
	return cmd
}

// buildClient assembles a streaming client from flags and environment.
func buildClient() (zonewatch.Client, error) {
	log := logging.NewConsole()
	opts := []zonewatch.Option{zonewatch.WithLogger(log)}

	if viper.GetBool("mock") {
		simOpts := []mock.Option{}
		if seed := viper.GetInt64("seed"); seed != 0 {
			simOpts = append(simOpts, mock.WithSeed(seed))
		}
		if viper.GetBool("fast") {
			simOpts = append(simOpts, mock.WithIntervals(
				2*time.Second, 3*time.Second, 4*time.Second))
		}
		opts = append(opts, zonewatch.WithSimulator(mock.NewSimulator(simOpts...)))
		return zonewatch.New(opts...)
	}

	opts = append(opts, zonewatch.WithBaseURL(config.GetString("base-url")))
	if notiURL := config.GetString("noti-url"); notiURL != "" {
		opts = append(opts, zonewatch.WithNotificationURL(notiURL))
	}
	if token := config.GetString("token"); token != "" {
		opts = append(opts, zonewatch.WithTokenStore(func() string { return token }))
	}
	return zonewatch.New(opts...)
}

// newWatchStatusCmd watches the dashboard-wide zone-status stream.
func newWatchStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Watch the dashboard-wide zone status stream",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := buildClient()
			if err != nil {
				return err
			}
			defer client.Close()

			log := logging.NewConsole()
			stop, err := client.OpenStatus(zonewatch.Handlers{
				OnOpen: func() { log.Info().Msg("Status stream connected") },
				OnStatus: func(state map[string]wire.ZoneStatus) {
					names := make([]string, 0, len(state))
					for name := range state {
						names = append(names, name)
					}
					sort.Strings(names)
					for _, name := range names {
						log.Info().
							Str("zone", name).
							Str("status", string(state[name])).
							Msg("Zone status")
					}
				},
				OnError: func(err error) {
					log.Error().Err(err).Msg("Status stream failed")
				},
			})
			if err != nil {
				return err
			}
			defer stop()

			<-cmd.Context().Done()
			return nil
		},
	}
}

// newWatchZoneCmd watches one zone's sensor stream.
func newWatchZoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "zone <zone-id>",
		Short: "Watch a zone's sensor readings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := buildClient()
			if err != nil {
				return err
			}
			defer client.Close()

			log := logging.NewConsole()
			stop, err := client.OpenZone(args[0], zonewatch.Handlers{
				OnOpen: func() {
					log.Info().Str("zone", args[0]).Msg("Zone stream connected")
				},
				OnReadings: func(state map[wire.SensorType][]wire.Reading) {
					printReadings(log, state)
				},
				OnError: func(err error) {
					log.Error().Err(err).Msg("Zone stream failed")
				},
			})
			if err != nil {
				return err
			}
			defer stop()

			<-cmd.Context().Done()
			return nil
		},
	}
}

// newWatchNotiCmd watches the notification stream.
func newWatchNotiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "noti",
		Short: "Watch the notification stream",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := buildClient()
			if err != nil {
				return err
			}
			defer client.Close()

			log := logging.NewConsole()
			client.OnAlert(func(n wire.Notification) {
				log.Warn().
					Str("zone", n.ZoneID).
					Str("priority", n.Priority).
					Msg(n.Title)
			})

			stop, err := client.OpenNotifications(zonewatch.Handlers{
				OnOpen: func() { log.Info().Msg("Notification stream connected") },
				OnNotifications: func(notis []wire.Notification) {
					for _, n := range notis {
						log.Info().
							Str("type", n.NotiType).
							Str("zone", n.ZoneID).
							Str("title", n.Title).
							Msg(n.Message)
					}
				},
				OnError: func(err error) {
					log.Error().Err(err).Msg("Notification stream failed")
				},
			})
			if err != nil {
				return err
			}
			defer stop()

			<-cmd.Context().Done()
			return nil
		},
	}
}

// printReadings renders a merged reading map grouped by sensor type.
func printReadings(log zerolog.Logger, state map[wire.SensorType][]wire.Reading) {
	for _, t := range wire.SensorTypes() {
		readings, ok := state[t]
		if !ok {
			continue
		}
		label := titler.String(string(t))
		for _, r := range readings {
			ev := log.Info().
				Str("type", label).
				Str("sensor", r.SensorID).
				Str("status", string(r.SensorStatus))
			if r.Values.Particle() {
				for bin, v := range r.Values.Bins {
					ev = ev.Float64(bin+"um", v)
				}
			} else {
				ev = ev.Float64("value", r.Values.Value).Str("unit", r.Values.Unit)
			}
			ev.Msg("Reading")
		}
	}
}
