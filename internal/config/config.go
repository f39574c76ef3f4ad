package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Versifine/strafe/internal/avatar"
	"github.com/Versifine/strafe/internal/physics"
)

type Config struct {
	Physics  PhysicsConfig  `yaml:"physics"`
	Movement MovementConfig `yaml:"movement"`
	Jump     JumpConfig     `yaml:"jump"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type PhysicsConfig struct {
	Gravity         float64 `yaml:"gravity"`           // magnitude, applied downward
	UpdateRateHz    float64 `yaml:"update_rate_hz"`    // fixed steps per simulated second
	MaxSubSteps     int     `yaml:"max_substeps"`      // cap per Update call
	GroundHeight    float64 `yaml:"ground_height"`     // world-bound grounded threshold
	GroundTolerance float64 `yaml:"ground_tolerance"`  // max upward velocity still grounded
}

type MovementConfig struct {
	WalkSpeed            float64 `yaml:"walk_speed"`
	RunSpeed             float64 `yaml:"run_speed"`
	GroundAccel          float64 `yaml:"ground_accel"`
	AirAccel             float64 `yaml:"air_accel"`
	AirControl           float64 `yaml:"air_control"`
	DirectionChangeBoost float64 `yaml:"direction_change_boost"`
	MomentumRetention    float64 `yaml:"momentum_retention"`
	MaxSpeed             float64 `yaml:"max_speed"`
	StopAccelGround      float64 `yaml:"stop_accel_ground"`
	StopAccelAir         float64 `yaml:"stop_accel_air"`
}

type JumpConfig struct {
	Force         float64 `yaml:"force"`
	AirJumpFactor float64 `yaml:"air_jump_factor"`
	MaxJumps      int     `yaml:"max_jumps"`
	BufferMs      int     `yaml:"buffer_ms"`
	CoyoteMs      int     `yaml:"coyote_ms"`
	CooldownMs    int     `yaml:"cooldown_ms"`
	ForwardBoost  float64 `yaml:"forward_boost"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads and validates a yaml config. Zero-valued fields fall back to
// the engine defaults so a partial file stays usable.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validate config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	ps := physics.DefaultSettings()
	if c.Physics.Gravity == 0 {
		c.Physics.Gravity = -ps.Gravity.Y
	}
	if c.Physics.UpdateRateHz == 0 {
		c.Physics.UpdateRateHz = ps.UpdateRateHz
	}
	if c.Physics.MaxSubSteps == 0 {
		c.Physics.MaxSubSteps = ps.MaxSubSteps
	}
	if c.Physics.GroundHeight == 0 {
		c.Physics.GroundHeight = ps.GroundHeight
	}
	if c.Physics.GroundTolerance == 0 {
		c.Physics.GroundTolerance = ps.GroundTolerance
	}

	mv := avatar.DefaultMovementTuning()
	if c.Movement.WalkSpeed == 0 {
		c.Movement.WalkSpeed = mv.WalkSpeed
	}
	if c.Movement.RunSpeed == 0 {
		c.Movement.RunSpeed = mv.RunSpeed
	}
	if c.Movement.GroundAccel == 0 {
		c.Movement.GroundAccel = mv.GroundAccel
	}
	if c.Movement.AirAccel == 0 {
		c.Movement.AirAccel = mv.AirAccel
	}
	if c.Movement.AirControl == 0 {
		c.Movement.AirControl = mv.AirControl
	}
	if c.Movement.DirectionChangeBoost == 0 {
		c.Movement.DirectionChangeBoost = mv.DirectionChangeBoost
	}
	if c.Movement.MomentumRetention == 0 {
		c.Movement.MomentumRetention = mv.MomentumRetention
	}
	if c.Movement.MaxSpeed == 0 {
		c.Movement.MaxSpeed = mv.MaxSpeed
	}
	if c.Movement.StopAccelGround == 0 {
		c.Movement.StopAccelGround = mv.StopAccelGround
	}
	if c.Movement.StopAccelAir == 0 {
		c.Movement.StopAccelAir = mv.StopAccelAir
	}

	jp := avatar.DefaultJumpTuning()
	if c.Jump.Force == 0 {
		c.Jump.Force = jp.JumpForce
	}
	if c.Jump.AirJumpFactor == 0 {
		c.Jump.AirJumpFactor = jp.AirJumpFactor
	}
	if c.Jump.MaxJumps == 0 {
		c.Jump.MaxJumps = jp.MaxJumps
	}
	if c.Jump.BufferMs == 0 {
		c.Jump.BufferMs = int(jp.BufferWindow * 1000)
	}
	if c.Jump.CoyoteMs == 0 {
		c.Jump.CoyoteMs = int(jp.CoyoteWindow * 1000)
	}
	if c.Jump.CooldownMs == 0 {
		c.Jump.CooldownMs = int(jp.Cooldown * 1000)
	}
	if c.Jump.ForwardBoost == 0 {
		c.Jump.ForwardBoost = jp.ForwardBoost
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
}

func (c *Config) validate() error {
	if c.Physics.Gravity < 0 {
		return fmt.Errorf("physics.gravity must be a magnitude, got %v", c.Physics.Gravity)
	}
	if c.Physics.UpdateRateHz <= 0 {
		return fmt.Errorf("physics.update_rate_hz must be positive, got %v", c.Physics.UpdateRateHz)
	}
	if c.Movement.MomentumRetention < 0 || c.Movement.MomentumRetention > 1 {
		return fmt.Errorf("movement.momentum_retention must be in [0,1], got %v", c.Movement.MomentumRetention)
	}
	if c.Jump.MaxJumps < 1 {
		return fmt.Errorf("jump.max_jumps must be at least 1, got %d", c.Jump.MaxJumps)
	}
	return nil
}

// PhysicsSettings maps the config onto world settings.
func (c *Config) PhysicsSettings() physics.Settings {
	s := physics.DefaultSettings()
	s.Gravity = physics.Vec3{Y: -c.Physics.Gravity}
	s.UpdateRateHz = c.Physics.UpdateRateHz
	s.MaxSubSteps = c.Physics.MaxSubSteps
	s.GroundHeight = c.Physics.GroundHeight
	s.GroundTolerance = c.Physics.GroundTolerance
	return s
}

// MovementTuning maps the config onto the movement controller's parameters.
func (c *Config) MovementTuning() avatar.MovementTuning {
	t := avatar.DefaultMovementTuning()
	t.WalkSpeed = c.Movement.WalkSpeed
	t.RunSpeed = c.Movement.RunSpeed
	t.GroundAccel = c.Movement.GroundAccel
	t.AirAccel = c.Movement.AirAccel
	t.AirControl = c.Movement.AirControl
	t.DirectionChangeBoost = c.Movement.DirectionChangeBoost
	t.MomentumRetention = c.Movement.MomentumRetention
	t.MaxSpeed = c.Movement.MaxSpeed
	t.StopAccelGround = c.Movement.StopAccelGround
	t.StopAccelAir = c.Movement.StopAccelAir
	return t
}

// JumpTuning maps the config onto the jump controller's parameters.
func (c *Config) JumpTuning() avatar.JumpTuning {
	return avatar.JumpTuning{
		JumpForce:     c.Jump.Force,
		AirJumpFactor: c.Jump.AirJumpFactor,
		MaxJumps:      c.Jump.MaxJumps,
		BufferWindow:  float64(c.Jump.BufferMs) / 1000,
		CoyoteWindow:  float64(c.Jump.CoyoteMs) / 1000,
		Cooldown:      float64(c.Jump.CooldownMs) / 1000,
		ForwardBoost:  c.Jump.ForwardBoost,
	}
}
