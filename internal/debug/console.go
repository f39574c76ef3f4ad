package debug

import (
	"bufio"
	"context"
	"fmt"
	"math"
	"os"
	"sync"
	"time"

	"golang.org/x/term"

	"github.com/Versifine/strafe/internal/avatar"
	"github.com/Versifine/strafe/internal/physics"
)

const (
	defaultTickInterval = 16 * time.Millisecond
	defaultMovePulse    = 180 * time.Millisecond
	yawStepDeg          = 15.0
)

// Console is an interactive terminal driver for the simulation: raw-mode
// key presses become input pulses for the avatar while a status line shows
// the body state the renderer would consume.
type Console struct {
	world        *physics.World
	avatar       *avatar.Avatar
	spawn        physics.Vec3
	tickInterval time.Duration
	movePulse    time.Duration

	mu            sync.Mutex
	yaw           float64
	sprint        bool
	jumpQueued    bool
	forwardUntil  time.Time
	backwardUntil time.Time
	leftUntil     time.Time
	rightUntil    time.Time

	pending chan func()
	done    chan struct{}
}

// NewConsole wires a console to a world and its avatar. spawn is where 'r'
// respawns the avatar.
func NewConsole(world *physics.World, av *avatar.Avatar, spawn physics.Vec3) *Console {
	return &Console{
		world:        world,
		avatar:       av,
		spawn:        spawn,
		tickInterval: defaultTickInterval,
		movePulse:    defaultMovePulse,
		pending:      make(chan func(), 8),
		done:         make(chan struct{}),
	}
}

// Do schedules fn to run on the tick goroutine before the next tick, so
// tuning swaps and other mutations never race a step. Full queue drops fn.
func (c *Console) Do(fn func()) {
	if c == nil || fn == nil {
		return
	}
	select {
	case c.pending <- fn:
	default:
	}
}

// Start switches the terminal to raw mode and runs until q or ctx cancels.
func (c *Console) Start(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("console is nil")
	}
	if c.world == nil || c.avatar == nil {
		return fmt.Errorf("console needs a world and an avatar")
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("set terminal raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
		fmt.Print("\r\n")
	}()

	fmt.Print("[debug] sim console: W/A/S/D move, Space jump, ] sprint, arrows turn, R respawn, Q quit\r\n")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go c.tickLoop(ctx)

	reader := bufio.NewReader(os.Stdin)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-c.done:
			return nil
		default:
		}

		b, err := reader.ReadByte()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read console input: %w", err)
		}
		if quit := c.handleKey(reader, b); quit {
			return nil
		}
	}
}

func (c *Console) tickLoop(ctx context.Context) {
	ticker := time.NewTicker(c.tickInterval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now

		drain:
			for {
				select {
				case fn := <-c.pending:
					fn()
				default:
					break drain
				}
			}

			in := c.takeInput(now)
			if err := c.avatar.Tick(in, dt); err != nil {
				fmt.Printf("\r\n[debug] tick failed: %v\r\n", err)
				return
			}
			c.world.Update(dt)
			c.renderStatusLine()
		}
	}
}

// takeInput converts the pending key pulses into one frame of input.
func (c *Console) takeInput(now time.Time) avatar.Input {
	c.mu.Lock()
	defer c.mu.Unlock()

	in := avatar.Input{Yaw: c.yaw, Sprint: c.sprint}
	if now.Before(c.forwardUntil) {
		in.MoveZ += 1
	}
	if now.Before(c.backwardUntil) {
		in.MoveZ -= 1
	}
	if now.Before(c.leftUntil) {
		in.MoveX -= 1
	}
	if now.Before(c.rightUntil) {
		in.MoveX += 1
	}
	if c.jumpQueued {
		in.Jump = true
		c.jumpQueued = false
	}
	return in
}

func (c *Console) handleKey(reader *bufio.Reader, b byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	until := time.Now().Add(c.movePulse)
	switch b {
	case 'w', 'W':
		c.forwardUntil = until
	case 's', 'S':
		c.backwardUntil = until
	case 'a', 'A':
		c.leftUntil = until
	case 'd', 'D':
		c.rightUntil = until
	case ' ':
		c.jumpQueued = true
	case ']':
		c.sprint = !c.sprint
	case 'r', 'R':
		// Respawn on the tick goroutine, never mid-step.
		c.Do(func() { c.avatar.Reset(c.spawn) })
	case 'q', 'Q', 3: // 3 = ctrl-c in raw mode
		close(c.done)
		return true
	case 27: // ESC sequence, probably an arrow key
		c.handleEscape(reader)
	}
	return false
}

func (c *Console) handleEscape(reader *bufio.Reader) {
	b1, err := reader.ReadByte()
	if err != nil || b1 != '[' {
		return
	}
	b2, err := reader.ReadByte()
	if err != nil {
		return
	}
	switch b2 {
	case 'C': // right arrow
		c.yaw -= yawStepDeg * math.Pi / 180
	case 'D': // left arrow
		c.yaw += yawStepDeg * math.Pi / 180
	}
}

func (c *Console) renderStatusLine() {
	st := c.avatar.State()
	c.mu.Lock()
	yawDeg := c.yaw * 180 / math.Pi
	sprint := c.sprint
	c.mu.Unlock()

	ground := "air"
	if st.OnGround {
		ground = "ground"
	}
	mode := "walk"
	if sprint {
		mode = "run"
	}
	fmt.Printf("\r\x1b[Kpos=(%6.2f %6.2f %6.2f) vel=(%5.2f %5.2f %5.2f) %s %s yaw=%.0f jumps=%d",
		st.Position.X, st.Position.Y, st.Position.Z,
		st.Velocity.X, st.Velocity.Y, st.Velocity.Z,
		ground, mode, yawDeg, c.avatar.JumpCount())
}
