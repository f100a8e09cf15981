// Command promote grants the admin role to an existing user.
// The first admin has to be promoted out of band; after that role changes
// go through the admin API.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/taskhive/taskhive/internal/config"
	"github.com/taskhive/taskhive/internal/domain"
	"github.com/taskhive/taskhive/internal/identity"
	identitypostgres "github.com/taskhive/taskhive/internal/identity/postgres"
	"github.com/taskhive/taskhive/internal/pkg/postgres"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: promote <username>")
		os.Exit(2)
	}
	username := os.Args[1]

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := postgres.Connect(ctx, postgres.Config{
		URL:             cfg.Database.URL,
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Minute,
		ConnectAttempts: 1,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	repo := identitypostgres.NewRepository(db)
	if err := repo.SetRoleByUsername(ctx, username, domain.RoleAdmin); err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			fmt.Fprintf(os.Stderr, "no user found with username %q\n", username)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "promote user: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("user %q is now an admin\n", username)
}
