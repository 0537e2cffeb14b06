// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func userFlag() cli.Flag {
	return &cli.IntFlag{
		Name:     "user",
		Aliases:  []string{"u"},
		Usage:    "User ID",
		Required: true,
	}
}

func movieFlag() cli.Flag {
	return &cli.IntFlag{
		Name:     "movie",
		Aliases:  []string{"m"},
		Usage:    "Movie ID",
		Required: true,
	}
}

// setupCommand handles config and database initialization.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write a config file from the built-in template",
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Initialize the storage backend and run migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Roll back the most recent migration instead",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// usersCommand handles user management
func usersCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "users",
		Aliases: []string{"user"},
		Usage:   "Manage users",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List users and their movie counts",
				Action: r.UsersList,
			},
			{
				Name:   "show",
				Usage:  "Show a user and their movies",
				Flags:  []cli.Flag{userFlag()},
				Action: r.UsersShow,
			},
			{
				Name:      "add",
				Usage:     "Add a user",
				ArgsUsage: "<name>",
				Action:    r.UsersAdd,
			},
			{
				Name:      "rename",
				Usage:     "Rename a user",
				ArgsUsage: "<name>",
				Flags:     []cli.Flag{userFlag()},
				Action:    r.UsersRename,
			},
			{
				Name:   "delete",
				Usage:  "Delete a user along with their movies and reviews",
				Flags:  []cli.Flag{userFlag()},
				Action: r.UsersDelete,
			},
		},
	}
}

// moviesCommand handles a user's movie list
func moviesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "movies",
		Aliases: []string{"movie"},
		Usage:   "Manage a user's movies",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List a user's movies",
				Flags:  []cli.Flag{userFlag()},
				Action: r.MoviesList,
			},
			{
				Name:   "show",
				Usage:  "Show one movie",
				Flags:  []cli.Flag{userFlag(), movieFlag()},
				Action: r.MoviesShow,
			},
			{
				Name:      "add",
				Usage:     "Look up a title on OMDb and add it",
				ArgsUsage: "<title>",
				Flags:     []cli.Flag{userFlag()},
				Action:    r.MoviesAdd,
			},
			{
				Name:  "update",
				Usage: "Edit a movie's title, director, year or rating",
				Flags: []cli.Flag{
					userFlag(),
					movieFlag(),
					&cli.StringFlag{Name: "title", Usage: "New title"},
					&cli.StringFlag{Name: "director", Usage: "New director"},
					&cli.StringFlag{Name: "year", Usage: "New year"},
					&cli.FloatFlag{Name: "rating", Usage: "New rating (0-10)"},
				},
				Action: r.MoviesUpdate,
			},
			{
				Name:   "delete",
				Usage:  "Delete a movie",
				Flags:  []cli.Flag{userFlag(), movieFlag()},
				Action: r.MoviesDelete,
			},
			{
				Name:      "import",
				Usage:     "Look up and add many titles",
				ArgsUsage: "[title...]",
				Flags: []cli.Flag{
					userFlag(),
					&cli.StringFlag{
						Name:    "file",
						Aliases: []string{"f"},
						Usage:   "Read titles from a file, one per line",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent lookups",
						Value: 3,
					},
				},
				Action: r.MoviesImport,
			},
			{
				Name:  "export",
				Usage: "Export one user's movies, or every user's when --user is omitted",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "user",
						Aliases: []string{"u"},
						Usage:   "User ID (default: all users)",
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Export format: json, csv, markdown, txt",
						Value: "json",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file (single user) or directory (all users)",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent writers for a bulk export",
						Value: 4,
					},
				},
				Action: r.MoviesExport,
			},
		},
	}
}

// reviewsCommand handles reviews (sqlite backend only)
func reviewsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "reviews",
		Aliases: []string{"review"},
		Usage:   "Manage movie reviews (sqlite backend)",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List a movie's reviews",
				Flags:  []cli.Flag{userFlag(), movieFlag()},
				Action: r.ReviewsList,
			},
			{
				Name:      "add",
				Usage:     "Review a movie",
				ArgsUsage: "<text>",
				Flags:     []cli.Flag{userFlag(), movieFlag()},
				Action:    r.ReviewsAdd,
			},
			{
				Name:  "delete",
				Usage: "Delete a review",
				Flags: []cli.Flag{
					userFlag(),
					movieFlag(),
					&cli.IntFlag{
						Name:     "review",
						Aliases:  []string{"r"},
						Usage:    "Review ID",
						Required: true,
					},
				},
				Action: r.ReviewsDelete,
			},
		},
	}
}

// lookupCommand resolves a title without storing it
func lookupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "lookup",
		Aliases:   []string{"search"},
		Usage:     "Look up a title on OMDb",
		ArgsUsage: "<title>",
		Action:    r.Lookup,
	}
}

// serveCommand runs the JSON API
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the JSON HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (default: server.host:server.port from config)",
			},
		},
		Action: r.Serve,
	}
}
