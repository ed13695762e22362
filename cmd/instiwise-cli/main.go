// instiwise-cli exercises the InstiWise client SDK from the command line:
// log in, browse events, projects and news, and toggle favorites and likes.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	client "github.com/instiwise/client-go"
)

var baseURL string
var debug bool

const requestTimeout = 15 * time.Second

func main() {
	// Local development reads INSTIWISE_* settings from .env when present.
	_ = godotenv.Load()

	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// NewRootCmd constructs the root CLI command; exposed for unit testing.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "instiwise-cli",
		Short: "InstiWise CLI for events, projects and news",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
			log.Logger = log.Output(zerolog.ConsoleWriter{
				Out:        os.Stderr,
				TimeFormat: "2006-01-02 15:04:05",
				NoColor:    true,
			})
			if debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
				_ = os.Setenv("INSTIWISE_DEBUG", "true")
				log.Debug().Msg("debug logging enabled")
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}
		},
	}

	defaultURL := getEnv("INSTIWISE_BASE_URL", "http://localhost:4000/api")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", defaultURL, "Base URL of the InstiWise backend")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable verbose debug output")

	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newWhoamiCmd())
	rootCmd.AddCommand(newEventsCmd())
	rootCmd.AddCommand(newFavoriteCmd())
	rootCmd.AddCommand(newProjectsCmd())
	rootCmd.AddCommand(newCreateProjectCmd())
	rootCmd.AddCommand(newLikeProjectCmd())
	rootCmd.AddCommand(newNewsCmd())

	return rootCmd
}

func newClient() *client.Client {
	return client.New(baseURL, client.WithLogger(log.Logger))
}

func withTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, requestTimeout)
}

func newLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and persist the session locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient()
			defer func() { _ = c.Close() }()
			ctx, cancel := withTimeout(cmd.Context())
			defer cancel()

			u, err := c.Login(ctx, email, password)
			if err != nil {
				log.Error().Err(err).Str("email", email).Msg("login failed")
				return err
			}
			fmt.Printf("Logged in as %s (%s)\n", u.Username, u.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email (required)")
	cmd.Flags().StringVar(&password, "password", "", "Account password (required)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the refresh token and clear local state",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient()
			defer func() { _ = c.Close() }()
			ctx, cancel := withTimeout(cmd.Context())
			defer cancel()

			if err := c.Logout(ctx); err != nil {
				return err
			}
			fmt.Println("Logged out")
			return nil
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the locally persisted session user",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient()
			defer func() { _ = c.Close() }()

			u, ok := c.CurrentUser()
			if !ok {
				fmt.Println("Not logged in")
				return nil
			}
			fmt.Printf("%s (%s)\n", u.Username, u.Email)
			return nil
		},
	}
}

func newEventsCmd() *cobra.Command {
	var upcoming bool

	cmd := &cobra.Command{
		Use:   "events",
		Short: "List events",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient()
			defer func() { _ = c.Close() }()
			ctx, cancel := withTimeout(cmd.Context())
			defer cancel()

			var events []client.Event
			var err error
			if upcoming {
				events, err = c.UpcomingEvents(ctx)
			} else {
				events, err = c.Events(ctx)
			}
			if err != nil {
				return err
			}
			for _, e := range events {
				fmt.Printf("%s  %s %s  %s (%d favorites)\n", e.ID, e.Date, e.Start, e.Header, len(e.Favorites))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&upcoming, "upcoming", false, "Only events that have not started yet")
	return cmd
}

func newFavoriteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fav <event-id>",
		Short: "Toggle an event favorite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient()
			defer func() { _ = c.Close() }()
			ctx, cancel := withTimeout(cmd.Context())
			defer cancel()

			if _, err := c.Events(ctx); err != nil {
				return err
			}
			if err := c.ToggleFavorite(ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("Toggled favorite on %s\n", args[0])
			return nil
		},
	}
}

func newProjectsCmd() *cobra.Command {
	var mine bool

	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient()
			defer func() { _ = c.Close() }()
			ctx, cancel := withTimeout(cmd.Context())
			defer cancel()

			var projects []client.Project
			var err error
			if mine {
				projects, err = c.MyProjects(ctx)
			} else {
				projects, err = c.Projects(ctx)
			}
			if err != nil {
				return err
			}
			for _, p := range projects {
				fmt.Printf("%s  %s (%d likes)\n", p.ID, p.Title, len(p.Likes))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&mine, "mine", false, "Only projects created by the logged-in user")
	return cmd
}

func newCreateProjectCmd() *cobra.Command {
	var title, description string

	cmd := &cobra.Command{
		Use:   "create-project",
		Short: "Create a new project",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient()
			defer func() { _ = c.Close() }()
			ctx, cancel := withTimeout(cmd.Context())
			defer cancel()

			p, err := c.CreateProject(ctx, client.CreateProjectRequest{
				Title:       title,
				Description: description,
			})
			if err != nil {
				log.Error().Err(err).Str("title", title).Msg("create project failed")
				return err
			}
			fmt.Printf("Project created: %s - %s\n", p.ID, p.Title)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Project title (required)")
	cmd.Flags().StringVar(&description, "description", "", "Description (optional)")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func newLikeProjectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "like-project <project-id>",
		Short: "Toggle a project like",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient()
			defer func() { _ = c.Close() }()
			ctx, cancel := withTimeout(cmd.Context())
			defer cancel()

			if _, err := c.Projects(ctx); err != nil {
				return err
			}
			if err := c.LikeProject(ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("Toggled like on %s\n", args[0])
			return nil
		},
	}
}

func newNewsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "news",
		Short: "List the news feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient()
			defer func() { _ = c.Close() }()
			ctx, cancel := withTimeout(cmd.Context())
			defer cancel()

			items, err := c.News(ctx)
			if err != nil {
				return err
			}
			for _, n := range items {
				fmt.Printf("%s  %s (+%d/-%d, %d views)\n", n.ID, n.Title, len(n.Likes), len(n.Dislikes), len(n.Views))
			}
			return nil
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
