package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/scenewire/engine/internal/animation"
	"github.com/scenewire/engine/internal/api"
	"github.com/scenewire/engine/internal/binding"
	"github.com/scenewire/engine/internal/config"
	"github.com/scenewire/engine/internal/events"
	"github.com/scenewire/engine/internal/scene"
	"github.com/scenewire/engine/internal/storage/postgres"
	"github.com/scenewire/engine/internal/variable"
	"github.com/scenewire/engine/internal/version"
)

func main() {
	// .env is optional; real deployments use the environment directly.
	_ = godotenv.Load()

	cfgPath := os.Getenv("SCENEWIRE_CONFIG")
	if cfgPath == "" {
		cfgPath = "engine.yaml"
	}

	cfg, err := config.LoadEngineConfig(cfgPath)
	if err != nil {
		log.Fatalf("failed to load %s: %v", cfgPath, err)
	}

	api.InitAuth()
	api.InitTLS()
	api.InitMetrics()
	api.SetSceneName(cfg.Scene.Name)

	// Event persistence is optional; the engine runs without it.
	if pg, err := postgres.New(cfg.Scene.ID); err != nil {
		log.Printf("postgres unavailable, events kept in memory only: %v", err)
	} else {
		events.SetPostgresClient(pg)
		api.SetPostgresConnected(true)
		defer pg.Close()
	}

	store := variable.NewStore()
	objects := scene.NewRegistry()
	manager := binding.NewManager(store)
	scheduler := animation.NewScheduler(store, objects, cfg.TickInterval())

	api.SetGauges(store.Count, manager.RunningWorkers, scheduler.ActiveTweens)

	webhooks := binding.NewEndpointRegistry()
	server := api.NewServer(store, manager, scheduler, webhooks, objects, cfg.BaseURL())
	server.Start(cfg.APIPort())

	hostname, _ := os.Hostname()
	events.Emit("info", "system.startup", "engine started", map[string]interface{}{
		"scene_id": cfg.Scene.ID,
		"hostname": hostname,
		"version":  version.Version,
		"pid":      os.Getpid(),
	})

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	events.Emit("info", "system.shutdown", "engine stopping", nil)
	manager.Close()
	scheduler.Close()
	events.CloseAllSubscribers()
}
