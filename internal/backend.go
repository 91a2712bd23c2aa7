package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/markusressel/pidctl/internal/api"
	"github.com/markusressel/pidctl/internal/configuration"
	"github.com/markusressel/pidctl/internal/loops"
	"github.com/markusressel/pidctl/internal/persistence"
	"github.com/markusressel/pidctl/internal/plants"
	"github.com/markusressel/pidctl/internal/statistics"
	"github.com/markusressel/pidctl/internal/ui"
	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 5 * time.Second

func RunDaemon() {
	pers := persistence.NewPersistence(configuration.CurrentConfig.DbPath)
	if err := pers.Init(); err != nil {
		ui.Fatal("Unable to initialize persistence at %s: %v", configuration.CurrentConfig.DbPath, err)
	}

	plantList, loopList, err := InitializeObjects()
	if err != nil {
		ui.Fatal("%v", err)
	}
	if len(loopList) == 0 {
		ui.Fatal("No valid loop configurations, exiting.")
	}

	statistics.Register(statistics.NewPlantCollector(plantList))
	statistics.Register(statistics.NewLoopCollector(loopList))

	ctx, cancel := context.WithCancel(context.Background())

	var g run.Group
	{
		if configuration.CurrentConfig.Statistics.Enabled {
			// === Prometheus Exporter
			port := configuration.CurrentConfig.Statistics.Port
			if port <= 0 || port >= 65535 {
				port = 9000
			}
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			server := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}

			g.Add(func() error {
				ui.Info("Starting statistics server on port %d...", port)
				return ignoreServerClosed(server.ListenAndServe())
			}, func(err error) {
				ui.Info("Stopping statistics server...")
				shutdown(server.Shutdown)
			})
		}
	}
	{
		if configuration.CurrentConfig.Api.Enabled {
			// === REST API
			rest := api.CreateRestService(prometheus.DefaultRegisterer)
			addr := fmt.Sprintf("%s:%d", configuration.CurrentConfig.Api.Host, configuration.CurrentConfig.Api.Port)

			g.Add(func() error {
				ui.Info("Starting REST api on %s...", addr)
				return ignoreServerClosed(rest.Start(addr))
			}, func(err error) {
				ui.Info("Stopping REST api...")
				shutdown(rest.Shutdown)
			})
		}
	}
	{
		if configuration.CurrentConfig.Profiling.Enabled {
			// === pprof
			mux := http.NewServeMux()
			mux.HandleFunc("/debug/pprof/", pprof.Index)
			mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
			mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
			mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
			mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
			addr := fmt.Sprintf("%s:%d", configuration.CurrentConfig.Profiling.Host, configuration.CurrentConfig.Profiling.Port)
			server := &http.Server{Addr: addr, Handler: mux}

			g.Add(func() error {
				ui.Info("Starting profiling server on %s...", addr)
				return ignoreServerClosed(server.ListenAndServe())
			}, func(err error) {
				shutdown(server.Shutdown)
			})
		}
	}
	{
		// === plant simulation
		tickRate := configuration.CurrentConfig.PlantTickRate
		if tickRate <= 0 {
			tickRate = 10 * time.Millisecond
		}
		for _, plant := range plantList {
			p := plant
			mon := plants.NewPlantMonitor(p, tickRate)

			g.Add(func() error {
				err := mon.Run(ctx)
				ui.Info("Plant monitor for plant %s stopped.", p.GetId())
				return err
			}, func(err error) {
				if err != nil {
					ui.Warning("Error simulating plant: %v", err)
				}
			})
		}
	}
	{
		// === control loops
		for _, loop := range loopList {
			l := loop

			g.Add(func() error {
				err := l.Run(ctx)
				ui.Info("Control loop %s stopped.", l.GetId())
				return err
			}, func(err error) {
				if err != nil {
					ui.Warning("Something went wrong: %v", err)
				}
			})
		}
	}
	{
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

		g.Add(func() error {
			select {
			case <-sig:
				ui.Info("Received SIGTERM signal, exiting...")
			case <-ctx.Done():
			}
			return nil
		}, func(err error) {
			signal.Stop(sig)
			cancel()
		})
	}

	err = g.Run()
	saveTraces(pers, loopList)

	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	} else {
		ui.Info("Done.")
		os.Exit(0)
	}
}

// InitializeObjects creates all configured plants and loops and registers them
// in PlantMap and LoopMap. Loops are returned in evaluation order.
func InitializeObjects() ([]plants.Plant, []loops.ControlLoop, error) {
	var plantList []plants.Plant
	plantsById := map[string]plants.Plant{}
	for _, config := range configuration.CurrentConfig.Plants {
		plant, err := plants.NewPlant(config)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to process plant configuration %s: %w", config.ID, err)
		}
		plantList = append(plantList, plant)
		plantsById[config.ID] = plant
		plants.PlantMap.Set(config.ID, plant)
	}

	loopList, err := loops.CreateLoops(configuration.CurrentConfig.Loops, plantsById)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to process loop configuration: %w", err)
	}
	for _, loop := range loopList {
		loops.LoopMap.Set(loop.GetId(), loop)
	}

	return plantList, loopList, nil
}

func saveTraces(pers persistence.Persistence, loopList []loops.ControlLoop) {
	for _, loop := range loopList {
		err := pers.SaveTrace(loop.GetId(), loop.Trace())
		if err != nil {
			ui.Warning("Unable to save trace of loop %s: %v", loop.GetId(), err)
		} else {
			ui.Debug("Saved trace of loop %s", loop.GetId())
		}
	}
}

func ignoreServerClosed(err error) error {
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func shutdown(f func(ctx context.Context) error) {
	timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer timeoutCancel()
	if err := f(timeoutCtx); err != nil {
		ui.Warning("Error stopping server: %v", err)
	}
}
