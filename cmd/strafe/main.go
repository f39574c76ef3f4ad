package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Versifine/strafe/internal/avatar"
	"github.com/Versifine/strafe/internal/config"
	"github.com/Versifine/strafe/internal/debug"
	"github.com/Versifine/strafe/internal/event"
	"github.com/Versifine/strafe/internal/logger"
	"github.com/Versifine/strafe/internal/physics"
)

const configPath = "configs/config.yaml"

func main() {
	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: os.Stderr,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bus := event.NewBus()
	world := physics.NewWorld(cfg.PhysicsSettings(), bus)

	spawn := physics.Vec3{Y: 1}
	av, err := buildScene(world, spawn, cfg, bus)
	if err != nil {
		slog.Error("Failed to build scene", "error", err)
		os.Exit(1)
	}

	bus.Subscribe(event.EventLanding, func(evt any) {
		if e, ok := evt.(event.LandingEvent); ok {
			slog.Debug("Body landed", "body", e.Body, "impact", e.ImpactVel)
		}
	})
	bus.Subscribe(event.EventJump, func(evt any) {
		if e, ok := evt.(event.JumpEvent); ok {
			slog.Debug("Avatar jumped", "count", e.Count)
		}
	})
	bus.Subscribe(event.EventBodyRemoved, func(evt any) {
		if e, ok := evt.(event.BodyRemovedEvent); ok {
			slog.Info("Body removed", "body", e.Body)
		}
	})

	console := debug.NewConsole(world, av, spawn)
	watchTuning(ctx, console, av)

	if err := console.Start(ctx); err != nil {
		slog.Error("Console exited", "error", err)
		os.Exit(1)
	}
}

// buildScene populates the world with a ground plane, a few obstacles, some
// loose dynamic spheres, and the controlled avatar body.
func buildScene(world *physics.World, spawn physics.Vec3, cfg *config.Config, bus *event.Bus) (*avatar.Avatar, error) {
	ground := physics.NewStaticBody(physics.Vec3{})
	ground.SetCollider(physics.NewPlaneCollider(physics.Vec3{Y: 1}))
	world.AddBody(ground)

	for _, pos := range []physics.Vec3{
		{X: 4, Y: 1, Z: 4},
		{X: -5, Y: 0.5, Z: 2},
		{X: 0, Y: 1.5, Z: -6},
	} {
		box := physics.NewStaticBody(pos)
		box.SetCollider(physics.NewBoxCollider(physics.Vec3{X: 1, Y: pos.Y, Z: 1}))
		world.AddBody(box)
	}

	for _, pos := range []physics.Vec3{
		{X: 2, Y: 3, Z: 0},
		{X: -2, Y: 4, Z: -1},
	} {
		ball := physics.NewDynamicBody(pos, 1)
		ball.Restitution = 0.6
		ball.SetCollider(physics.NewSphereCollider(0.4))
		world.AddBody(ball)
	}

	player := physics.NewDynamicBody(spawn, 70)
	player.Restitution = 0
	player.SetCollider(physics.NewSphereCollider(0.4))
	handle := world.AddBody(player)
	world.SetControlled(handle)

	return avatar.New(world, handle, cfg.MovementTuning(), cfg.JumpTuning(), bus)
}

// watchTuning hot-reloads movement and jump tuning when the config file
// changes. The swap runs on the console's tick goroutine.
func watchTuning(ctx context.Context, console *debug.Console, av *avatar.Avatar) {
	watcher, err := config.NewWatcher("configs")
	if err != nil {
		slog.Warn("Config watcher unavailable", "error", err)
		return
	}
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case path, ok := <-watcher.Events:
				if !ok {
					return
				}
				cfg, err := config.Load(path)
				if err != nil {
					slog.Warn("Ignoring bad config change", "path", path, "error", err)
					continue
				}
				console.Do(func() {
					av.SetTuning(cfg.MovementTuning(), cfg.JumpTuning())
				})
				slog.Info("Tuning reloaded", "path", path)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Warn("Config watcher error", "error", err)
			}
		}
	}()
}
