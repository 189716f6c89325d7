// Command create_operator da de alta un operador. La contraseña se lee de
// OPERATOR_PASSWORD para que no quede en el historial de la shell.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"newsletter/internal/auth"
	"newsletter/internal/config"
	"newsletter/internal/db"
	"newsletter/internal/repository"
	"newsletter/internal/service"
)

func main() {
	username := flag.String("username", "", "operator username")
	migrate := flag.Bool("migrate", false, "apply pending migrations before inserting")
	flag.Parse()

	ctx := context.Background()
	_ = godotenv.Load()

	if strings.TrimSpace(*username) == "" {
		log.Fatalf("-username is required")
	}
	password := os.Getenv("OPERATOR_PASSWORD")
	if password == "" {
		log.Fatalf("OPERATOR_PASSWORD is required")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Fatalf("db pool: %v", err)
	}
	defer pool.Close()

	if err := db.Ping(ctx, pool); err != nil {
		log.Fatalf("db ping: %v", err)
	}
	if *migrate || cfg.RunMigrations {
		if err := db.MigratePool(ctx, pool); err != nil {
			log.Fatalf("db migrations: %v", err)
		}
	}

	authSvc := service.NewAuthService(zap.NewNop(), repository.NewPgUserRepository(pool))
	op, err := authSvc.CreateOperator(ctx, *username, auth.NewPassword(password))
	if err != nil {
		log.Fatalf("create operator: %v", err)
	}
	log.Printf("operator %q created with id %s", op.Username, op.ID)
}
