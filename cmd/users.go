package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/moviweb/internal/shared"
	"github.com/urfave/cli/v3"
)

// joinArgs returns the positional arguments as one space-separated value, or ErrMissingArgument.
func joinArgs(cmd *cli.Command, name string) (string, error) {
	value := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if value == "" {
		return "", fmt.Errorf("%w: %s is required", shared.ErrMissingArgument, name)
	}
	return value, nil
}

// UsersList prints every user.
func (r *Runner) UsersList(ctx context.Context, cmd *cli.Command) error {
	store, err := r.openStore(ctx)
	if err != nil {
		return err
	}

	users, err := store.GetAllUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	return r.emit(cmd, users, func() error {
		return r.writePlainln(r.palette.UsersTable(users))
	})
}

// UsersShow prints one user and their movies.
func (r *Runner) UsersShow(ctx context.Context, cmd *cli.Command) error {
	store, err := r.openStore(ctx)
	if err != nil {
		return err
	}

	user, err := store.GetUser(ctx, cmd.Int("user"))
	if err != nil {
		return err
	}

	return r.emit(cmd, user, func() error {
		r.writePlainln(r.palette.Title(fmt.Sprintf("%s (#%d)", user.Name, user.ID)))
		return r.writePlainln(r.palette.MoviesTable(user.Movies))
	})
}

// UsersAdd creates a user from the positional name.
func (r *Runner) UsersAdd(ctx context.Context, cmd *cli.Command) error {
	name, err := joinArgs(cmd, "name")
	if err != nil {
		return err
	}

	store, err := r.openStore(ctx)
	if err != nil {
		return err
	}

	user, err := store.AddUser(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to add user: %w", err)
	}

	r.logger.Debug("added user", "id", user.ID)
	return r.emit(cmd, user, func() error {
		return r.writePlainln(r.palette.OK(fmt.Sprintf("Added user %q (#%d)", user.Name, user.ID)))
	})
}

// UsersRename changes a user's name.
func (r *Runner) UsersRename(ctx context.Context, cmd *cli.Command) error {
	name, err := joinArgs(cmd, "name")
	if err != nil {
		return err
	}

	store, err := r.openStore(ctx)
	if err != nil {
		return err
	}

	user, err := store.UpdateUser(ctx, cmd.Int("user"), name)
	if err != nil {
		return fmt.Errorf("failed to rename user: %w", err)
	}

	return r.emit(cmd, user, func() error {
		return r.writePlainln(r.palette.OK(fmt.Sprintf("Renamed user #%d to %q", user.ID, user.Name)))
	})
}

// UsersDelete removes a user along with their movies.
func (r *Runner) UsersDelete(ctx context.Context, cmd *cli.Command) error {
	store, err := r.openStore(ctx)
	if err != nil {
		return err
	}

	user, err := store.DeleteUser(ctx, cmd.Int("user"))
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	return r.emit(cmd, user, func() error {
		return r.writePlainln(r.palette.OK(fmt.Sprintf("Deleted user %q and %d movies", user.Name, len(user.Movies))))
	})
}
