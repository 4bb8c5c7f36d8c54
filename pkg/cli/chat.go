package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/journal/pkg/model"
	"github.com/m-mizutani/journal/pkg/render"
	"github.com/m-mizutani/journal/pkg/usecase/assistant"
	"github.com/m-mizutani/journal/pkg/usecase/session"
	"github.com/m-mizutani/journal/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

const chatHelp = `Type text to log food, mood or purchases.
  :raw      show the raw response of the last prompt
  :status   show secrets status
  :refresh  fetch secrets again
  exit      quit`

func chatCommand() *cli.Command {
	var (
		cfg         config
		historyFile string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "history-file",
			Usage:       "Readline history file (default: ~/.journal_history)",
			Sources:     cli.EnvVars("JOURNAL_HISTORY_FILE"),
			Destination: &historyFile,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, identityFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:  "chat",
		Usage: "Interactive prompt loop",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, err := cfg.setup(ctx)
			if err != nil {
				return err
			}

			sess, cleanup, err := cfg.newSession(ctx)
			if err != nil {
				return err
			}
			unwatch := watchSession(c.Root().Writer, sess)
			defer func() {
				cleanup()
				unwatch()
			}()

			busy := newBusyIndicator()
			uc := cfg.newAssistant(sess, assistant.WithStateHook(busy.hook))

			if historyFile == "" {
				if home, err := os.UserHomeDir(); err == nil {
					historyFile = filepath.Join(home, ".journal_history")
				}
			}

			rl, err := readline.NewEx(&readline.Config{
				Prompt:          "> ",
				HistoryFile:     historyFile,
				InterruptPrompt: "^C",
				EOFPrompt:       "exit",
				Stdout:          c.Root().Writer,
			})
			if err != nil {
				return goerr.Wrap(err, "failed to initialize readline")
			}
			defer rl.Close()

			return chatLoop(ctx, rl, c.Root().Writer, uc, sess)
		},
	}
}

// lineReader is the part of readline used by the chat loop
type lineReader interface {
	Readline() (string, error)
}

// watchSession prints a notice whenever the signed-in user changes
func watchSession(w io.Writer, sess *session.Session) func() {
	return sess.Subscribe(func(user *model.User) {
		if user == nil {
			fmt.Fprintln(w, "Signed out")
			return
		}
		fmt.Fprintf(w, "Signed in as %s\n", displayUser(user))
	})
}

func chatLoop(ctx context.Context, rl lineReader, w io.Writer, uc *assistant.UseCase, sess *session.Session) error {
	logger := logging.From(ctx)
	fmt.Fprintf(w, "Chat session started. Type 'help' for commands, 'exit' to quit.\n")
	printStatuses(w, sess.Statuses(), false)

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				break
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return goerr.Wrap(err, "failed to read input")
		}

		switch cmd := strings.TrimSpace(line); cmd {
		case "":
			continue
		case "exit", "quit":
			fmt.Fprintf(w, "\nChat session completed\n")
			return nil
		case "help":
			fmt.Fprintln(w, chatHelp)
		case ":raw":
			if raw := uc.Snapshot().Raw; raw != "" {
				render.NewPrinter(w).PrintRaw(raw)
			} else {
				fmt.Fprintln(w, "No response yet")
			}
		case ":status":
			printStatuses(w, sess.Statuses(), true)
		case ":refresh":
			if err := sess.Refetch(ctx); err != nil {
				logger.Warn("failed to refresh secrets", "error", err)
			}
			printStatuses(w, sess.Statuses(), true)
		default:
			// the error is already shown to the user; keep the loop going
			if err := submit(ctx, w, uc, line, false); err != nil && !errors.Is(err, model.ErrValidation) {
				logger.Debug("submission failed", "error", err)
			}
		}
	}

	fmt.Fprintf(w, "\nChat session completed\n")
	return nil
}
