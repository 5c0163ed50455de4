// Command admin runs operator tasks against the marketplace store.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/nomadhire/marketplace/internal/core/domain"
	"github.com/nomadhire/marketplace/internal/core/service"
	"github.com/nomadhire/marketplace/internal/infrastructure/config"
	"github.com/nomadhire/marketplace/internal/infrastructure/repository"
	"github.com/nomadhire/marketplace/internal/server"
	"github.com/nomadhire/marketplace/pkg/logger"
)

const usage = `Usage:
  admin promote <email>   Grant the admin role to a registered user
  admin seed              Seed the developer roster if it is empty
  admin reconcile         Repair developer availability for approved projects`

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := run(ctx, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, command string, args []string) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true, Service: "marketplace-admin"})

	store, closeStore, err := server.OpenStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore(context.Background()) }()

	users := repository.NewUserRepository(store)
	developers := repository.NewDeveloperRepository(store)
	projects := repository.NewProjectRepository(store)

	switch command {
	case "promote":
		if len(args) != 1 {
			return errors.New("usage: admin promote <email>")
		}
		provider, _ := server.NewIdentity(cfg, store, log)
		user, err := service.NewUserService(users, provider, log).PromoteToAdmin(ctx, args[0])
		if errors.Is(err, domain.ErrUserNotFound) {
			return fmt.Errorf("no user registered with email %s", args[0])
		}
		if err != nil {
			return err
		}
		fmt.Printf("%s (%s) is now an admin\n", user.Username, user.ID)

	case "seed":
		n, err := service.NewDirectorySeeder(developers, log).Seed(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("seeded %d developers\n", n)

	case "reconcile":
		report, err := service.NewApprovalReconciler(projects, developers, log).Run(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("checked %d approved projects, repaired %d developers, %d missing\n",
			report.Checked, report.Repaired, report.Missing)

	default:
		return fmt.Errorf("unknown command %q\n%s", command, usage)
	}
	return nil
}
