package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"

	"github.com/sandevgo/venuebot/internal/core"
	"github.com/sandevgo/venuebot/internal/session"
	"github.com/sandevgo/venuebot/pkg/log"
)

// ReadLine is the interactive chat surface. One session per run; typing
// 'exit' (or Ctrl+D) closes it, which also triggers the memory save.
type ReadLine struct {
	manager *session.Manager
	rl      *readline.Instance
	onExit  func()
}

func NewReadLine(manager *session.Manager, runtimePath string, onExit func()) (*ReadLine, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          ">>> ",
		HistoryFile:     filepath.Join(runtimePath, "input_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}

	return &ReadLine{
		manager: manager,
		rl:      rl,
		onExit:  onExit,
	}, nil
}

func (r *ReadLine) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	logger.Info().Msg("Chat started. Type 'exit' to quit.")

	sess := r.manager.Open()
	defer func() {
		r.manager.Close(ctx, sess.ID())
		if r.onExit != nil {
			r.onExit()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := r.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				if len(line) == 0 {
					return nil
				}
				continue
			} else if err == io.EOF {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "exit" {
			return nil
		}
		if line == "" {
			continue
		}

		answer, err := sess.HandleMessage(ctx, line)
		if err != nil {
			logger.Error().Err(err).Msg("turn failed")
			fmt.Fprintln(r.rl.Stdout(), userFacingTurnError(err))
			continue
		}

		fmt.Fprintf(r.rl.Stdout(), "%s\n", answer)
	}
}

// userFacingTurnError maps a failed turn to what the user sees. Internal
// detail stays in the log, never on screen.
func userFacingTurnError(err error) string {
	switch {
	case errors.Is(err, core.ErrSessionClosed):
		return "This session has ended. Restart the chat to continue."
	case errors.Is(err, context.Canceled):
		return "Okay, stopped that one."
	default:
		return "Sorry, I couldn't put a recommendation together just now. Please try again."
	}
}

func (r *ReadLine) Shutdown(ctx context.Context) error {
	if r.rl != nil {
		return r.rl.Close()
	}
	return nil
}
