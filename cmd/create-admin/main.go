// Command create-admin creates a superuser account. Superusers have no age
// and cannot be created through the public sign-up endpoint.
//
//	go run ./cmd/create-admin -username root
//
// The password is read from ADMIN_PASSWORD, or from the first line of stdin.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"

	"github.com/sakif/softdesk/internal/auth"
	"github.com/sakif/softdesk/internal/policy"
	sqliteRepo "github.com/sakif/softdesk/internal/repository/sqlite"
	"github.com/sakif/softdesk/internal/service"
)

type settings struct {
	DBPath   string `envconfig:"DB_PATH" default:"data/softdesk.db"`
	Password string `envconfig:"ADMIN_PASSWORD"`
}

func main() {
	username := flag.String("username", "admin", "username of the new superuser")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if err := run(*username, os.Stdin, logger); err != nil {
		logger.Error("create-admin failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(username string, stdin io.Reader, logger *slog.Logger) error {
	var s settings
	if err := envconfig.Process("", &s); err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}

	password := s.Password
	if password == "" {
		fmt.Fprint(os.Stderr, "Password: ")
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("reading password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	if s.DBPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(s.DBPath), 0o755); err != nil {
			return fmt.Errorf("creating database directory: %w", err)
		}
	}
	db, err := sqliteRepo.New(s.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	users := service.NewUserService(db, auth.NewPasswordService(), policy.New(policy.ReadAuthenticated), logger)
	admin, err := users.CreateSuperuser(context.Background(), username, password)
	if err != nil {
		return err
	}

	fmt.Printf("Superuser %q created (id %s).\n", admin.Username, admin.ID)
	return nil
}
