package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"syscall"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/LCoppers-Cloud/Vehix-sub002/internal/adapter/postgres"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/config"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain/user"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/logger"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/middleware"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/service"
)

// runAdmin dispatches admin subcommands (create-user, reset-password,
// list-users, audit).
func runAdmin(args []string) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "--help" {
		printAdminHelp()
		return nil
	}

	switch args[0] {
	case "create-user":
		return runAdminCreateUser(args[1:])
	case "reset-password":
		return runAdminResetPassword(args[1:])
	case "list-users":
		return runAdminListUsers(args[1:])
	case "audit":
		return runAdminAudit(args[1:])
	default:
		printAdminHelp()
		return fmt.Errorf("unknown admin command: %s", args[0])
	}
}

func printAdminHelp() {
	fmt.Fprintf(os.Stderr, `Usage: vehix admin <command> [options]

Commands:
  create-user      Create a new user
  reset-password   Reset a user's password
  list-users       List all users
  audit            Run an integrity audit and print the report
  help             Show this help message

Examples:
  vehix admin create-user --email tech@shop.test --name "Alex" --role technician
  vehix admin reset-password --email owner@localhost
  vehix admin list-users
  vehix admin audit --tenant 00000000-0000-0000-0000-000000000000
`)
}

// adminDeps bundles the services an admin subcommand may need.
type adminDeps struct {
	cfg     *config.Config
	store   *postgres.Store
	auth    *service.AuthService
	users   *service.UserService
	cleanup func()
}

func loadAdminDeps(ctx context.Context) (*adminDeps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	store := postgres.NewStore(pool)
	return &adminDeps{
		cfg:     cfg,
		store:   store,
		auth:    service.NewAuthService(store, &cfg.Auth),
		users:   service.NewUserService(store, &cfg.Auth),
		cleanup: pool.Close,
	}, nil
}

func runAdminCreateUser(args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ContinueOnError)
	email := fs.String("email", "", "user email address (required)")
	name := fs.String("name", "", "user display name (required)")
	role := fs.String("role", string(user.RoleTechnician), "role: owner, manager, or technician")
	tenantID := fs.String("tenant", middleware.DefaultTenantID, "tenant the user belongs to")
	password := fs.String("password", "", "password (prompted if not provided)") //nolint:gosec // CLI flag
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *email == "" {
		return fmt.Errorf("--email is required")
	}
	if *name == "" {
		return fmt.Errorf("--name is required")
	}

	pass := *password
	if pass == "" {
		var err error
		pass, err = promptPassword("Password: ")
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		confirm, err := promptPassword("Confirm password: ")
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		if pass != confirm {
			return fmt.Errorf("passwords do not match")
		}
	}

	ctx := middleware.WithTenantID(context.Background(), *tenantID)
	deps, err := loadAdminDeps(ctx)
	if err != nil {
		return err
	}
	defer deps.cleanup()

	u, err := deps.users.Create(ctx, user.CreateRequest{
		Email:    *email,
		Name:     *name,
		Password: pass,
		Role:     user.Role(*role),
		TenantID: *tenantID,
	})
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	fmt.Fprintf(os.Stderr, "User created: %s (id=%s, role=%s)\n", u.Email, u.ID, u.Role)
	return nil
}

func runAdminResetPassword(args []string) error {
	fs := flag.NewFlagSet("reset-password", flag.ContinueOnError)
	email := fs.String("email", "", "user email address (required)")
	tenantID := fs.String("tenant", middleware.DefaultTenantID, "tenant the user belongs to")
	password := fs.String("password", "", "new password (prompted if not provided)") //nolint:gosec // CLI flag
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *email == "" {
		return fmt.Errorf("--email is required")
	}

	newPass := *password
	if newPass == "" {
		var err error
		newPass, err = promptPassword("New password: ")
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		confirm, err := promptPassword("Confirm password: ")
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		if newPass != confirm {
			return fmt.Errorf("passwords do not match")
		}
	}

	ctx := middleware.WithTenantID(context.Background(), *tenantID)
	deps, err := loadAdminDeps(ctx)
	if err != nil {
		return err
	}
	defer deps.cleanup()

	u, err := deps.store.GetUserByEmail(ctx, *email)
	if err != nil {
		return fmt.Errorf("look up user: %w", err)
	}
	if err := deps.auth.SetPassword(ctx, u.ID, newPass); err != nil {
		return fmt.Errorf("reset password: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Password reset successfully for %s\n", *email)
	return nil
}

func runAdminListUsers(args []string) error {
	fs := flag.NewFlagSet("list-users", flag.ContinueOnError)
	tenantID := fs.String("tenant", middleware.DefaultTenantID, "tenant to list")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := middleware.WithTenantID(context.Background(), *tenantID)
	deps, err := loadAdminDeps(ctx)
	if err != nil {
		return err
	}
	defer deps.cleanup()

	users, err := deps.users.List(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	if len(users) == 0 {
		fmt.Println("No users found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tEMAIL\tNAME\tROLE\tENABLED")
	for i := range users {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\n",
			users[i].ID, users[i].Email, users[i].Name, users[i].Role, users[i].Enabled)
	}
	return w.Flush()
}

func runAdminAudit(args []string) error {
	fs := flag.NewFlagSet("audit", flag.ContinueOnError)
	tenantID := fs.String("tenant", middleware.DefaultTenantID, "tenant to audit")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := middleware.WithTenantID(context.Background(), *tenantID)
	deps, err := loadAdminDeps(ctx)
	if err != nil {
		return err
	}
	defer deps.cleanup()

	log, logCloser := logger.New(deps.cfg.Logging)
	defer logCloser.Close()

	integritySvc := service.NewIntegrityService(deps.store, &deps.cfg.Integrity, nil, nil, log)
	report, err := integritySvc.Run(ctx)
	if err != nil {
		return fmt.Errorf("audit: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// promptPassword reads a password from the terminal without echoing.
func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(int(syscall.Stdin)) //nolint:unconvert // int conversion needed on some platforms
	fmt.Fprintln(os.Stderr)                         // newline after password input
	if err != nil {
		return "", err
	}
	return string(b), nil
}
