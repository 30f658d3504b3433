// Package audio plays feedback cues without blocking the caller.
package audio

import (
	"context"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const bell = "\a"

// playTimeout bounds how long an external player may run.
const playTimeout = 5 * time.Second

// Config selects how each cue is played. An empty command means the error cue
// rings the terminal bell and the other cues stay silent.
type Config struct {
	Enabled   bool
	TypingCmd string
	ErrorCmd  string
	ClickCmd  string
}

// Player implements the engine's audio cues.
type Player struct {
	cfg  Config
	out  io.Writer
	log  zerolog.Logger
	run  func(ctx context.Context, argv []string) error
	wg   sync.WaitGroup
	mu   sync.Mutex
	busy map[string]bool
}

// NewPlayer returns a Player writing the bell to out.
func NewPlayer(cfg Config, out io.Writer, log zerolog.Logger) *Player {
	return &Player{
		cfg:  cfg,
		out:  out,
		log:  log.With().Str("component", "audio").Logger(),
		run:  runCommand,
		busy: map[string]bool{},
	}
}

// PlayTyping plays the keystroke cue.
func (p *Player) PlayTyping() {
	p.play("typing", p.cfg.TypingCmd, false)
}

// PlayError plays the rejected-keystroke cue.
func (p *Player) PlayError() {
	p.play("error", p.cfg.ErrorCmd, true)
}

// PlayClick plays the menu action cue.
func (p *Player) PlayClick() {
	p.play("click", p.cfg.ClickCmd, false)
}

// Wait blocks until running players exit.
func (p *Player) Wait() {
	p.wg.Wait()
}

func (p *Player) play(name, command string, bellFallback bool) {
	if !p.cfg.Enabled {
		return
	}
	argv := strings.Fields(command)
	if len(argv) == 0 {
		if bellFallback && p.out != nil {
			if _, err := io.WriteString(p.out, bell); err != nil {
				p.log.Debug().Err(err).Str("cue", name).Msg("bell failed")
			}
		}
		return
	}
	// Requests for a cue that is still playing are dropped.
	p.mu.Lock()
	if p.busy[name] {
		p.mu.Unlock()
		return
	}
	p.busy[name] = true
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer func() {
			p.mu.Lock()
			delete(p.busy, name)
			p.mu.Unlock()
		}()
		ctx, cancel := context.WithTimeout(context.Background(), playTimeout)
		defer cancel()
		if err := p.run(ctx, argv); err != nil {
			p.log.Debug().Err(err).Str("cue", name).Msg("audio cue failed")
		}
	}()
}

func runCommand(ctx context.Context, argv []string) error {
	return exec.CommandContext(ctx, argv[0], argv[1:]...).Run()
}
