// Command useradmin grants or revokes the admin flag of an existing user.
// The HTTP API never changes the flag.
package main

import (
	"context"
	"database/sql"
	"flag"
	"time"

	"github.com/Dan9191/auth-service/internal/config"
	"github.com/Dan9191/auth-service/internal/repository"
	"github.com/Dan9191/auth-service/internal/service"
	"github.com/Dan9191/auth-service/internal/utils"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()

	username := flag.String("username", "", "user to update")
	admin := flag.Bool("admin", true, "admin flag to set")
	flag.Parse()

	if *username == "" {
		logger.Fatal("-username is required")
	}

	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	svc := service.NewService(repository.NewRepository(db), utils.NewPasswordHasher(cfg.BcryptCost), logger)
	if err := svc.SetAdmin(ctx, *username, *admin); err != nil {
		logger.Fatalf("Failed to update %s: %v", *username, err)
	}
}
