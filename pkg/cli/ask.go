package cli

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/journal/pkg/usecase/assistant"
	"github.com/m-mizutani/journal/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func askCommand() *cli.Command {
	var (
		cfg     config
		prompt  string
		showRaw bool
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "prompt",
			Aliases:     []string{"m"},
			Usage:       "Text to send (default: remaining arguments)",
			Destination: &prompt,
		},
		&cli.BoolFlag{
			Name:        "raw",
			Usage:       "Print the raw response as well",
			Sources:     cli.EnvVars("JOURNAL_SHOW_RAW"),
			Destination: &showRaw,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, identityFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:      "ask",
		Usage:     "Send one prompt and print the detected actions",
		ArgsUsage: "[text...]",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, err := cfg.setup(ctx)
			if err != nil {
				return err
			}

			if prompt == "" {
				prompt = strings.Join(c.Args().Slice(), " ")
			}

			sess, cleanup, err := cfg.newSession(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			busy := newBusyIndicator()
			uc := cfg.newAssistant(sess, assistant.WithStateHook(busy.hook))

			if err := submit(ctx, c.Root().Writer, uc, prompt, showRaw); err != nil {
				logging.From(ctx).Debug("submission failed", "error", err)
				return goerr.Wrap(errShown, "failed to process prompt", goerr.V("interaction_id", uc.Snapshot().InteractionID))
			}
			return nil
		},
	}
}
