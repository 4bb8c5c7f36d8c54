package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

func signupCommand() *cli.Command {
	var cfg config

	flags := []cli.Flag{}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, identityFlags(&cfg)...)

	return &cli.Command{
		Name:  "signup",
		Usage: "Create an account with the identity provider",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, err := cfg.setup(ctx)
			if err != nil {
				return err
			}

			sess, closeStore, err := cfg.newRemoteSession(ctx)
			if err != nil {
				return err
			}
			defer closeStore()
			defer sess.SignOut(ctx)

			user, err := sess.SignUp(ctx, cfg.email, cfg.password)
			if user == nil {
				return err
			}

			fmt.Fprintf(c.Root().Writer, "Account created: %s (%s)\n", displayUser(user), user.ID)
			// a new account has no secrets document yet
			printStatuses(c.Root().Writer, sess.Statuses(), false)
			return nil
		},
	}
}
