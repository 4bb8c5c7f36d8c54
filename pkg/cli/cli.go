package cli

import (
	"context"
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

type Error struct {
	Code    int
	Message string
}

func Run(ctx context.Context, argv []string) *Error {
	// .env is optional; real environment variables take precedence
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &Error{Code: 1, Message: err.Error()}
	}

	cmd := &cli.Command{
		Name:  "journal",
		Usage: "Personal assistant that turns free text into food, mood and purchase records",
		Commands: []*cli.Command{
			askCommand(),
			chatCommand(),
			secretsCommand(),
			signupCommand(),
		},
	}

	return toError(cmd.Run(ctx, argv))
}

// toError converts a command error to an exit status. A failure already
// printed by the command carries no message.
func toError(err error) *Error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, errShown):
		return &Error{Code: 1}
	default:
		return &Error{
			Code:    1,
			Message: err.Error(),
		}
	}
}
