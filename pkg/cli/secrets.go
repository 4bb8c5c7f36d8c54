package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/m-mizutani/journal/pkg/model"
	"github.com/urfave/cli/v3"
)

func secretsCommand() *cli.Command {
	var (
		cfg config
		all bool
	)

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "all",
			Aliases:     []string{"a"},
			Usage:       "Also list secrets that loaded fine",
			Destination: &all,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, identityFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:  "secrets",
		Usage: "Sign in and show the status of each stored secret",
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
			defer cleanup()

			if user := sess.CurrentUser(); user != nil {
				fmt.Fprintf(c.Root().Writer, "Signed in as %s (%s)\n", displayUser(user), user.ID)
			}
			printStatuses(c.Root().Writer, sess.Statuses(), all)
			return nil
		},
	}
}

// printStatuses writes one line per secret. Secrets that loaded fine are
// skipped unless all is set.
func printStatuses(w io.Writer, statuses []model.SecretStatus, all bool) {
	for _, st := range statuses {
		if st.State == model.SecretStateOK && !all {
			continue
		}
		line := fmt.Sprintf("%s:\t%s", st.Name.DisplayName(), statusLabel(st.State))
		if st.Error != "" {
			line += "\t" + st.Error
		}
		fmt.Fprintln(w, line)
	}
}

func statusLabel(s model.SecretState) string {
	switch s {
	case model.SecretStateLoading:
		return "Loading..."
	case model.SecretStateError:
		return "Error"
	case model.SecretStateOK:
		return "OK"
	default:
		return "Unknown"
	}
}

func displayUser(u *model.User) string {
	if u.Email != "" {
		return u.Email
	}
	return string(u.ID)
}
