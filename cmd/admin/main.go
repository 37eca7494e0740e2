package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/user"
	"strings"
	"time"

	"github.com/badoux/checkmail"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"mesada/internal/domain/profile"
	"mesada/internal/infrastructure/authprovider"
	"mesada/internal/infrastructure/postgres"
	"mesada/internal/shared/auth"
	"mesada/internal/shared/config"
	"mesada/internal/shared/logger"
	"mesada/migrations"
)

const usage = `Mesada Admin CLI - Management commands for the Mesada API

Usage:
  admin <command> [options]

Commands:
  migrate        Apply pending database migrations
  create-admin   Create an account with the admin role
  delete-user    Delete an account and all of its data
  list-family    Show a guardian and their dependents
  list-admins    Show every admin account

Examples:
  admin migrate
  admin create-admin --email=ops@mesada.com.br --name="Ops" --password=secret123
  admin delete-user --user-id=6f1c3c1e-2b0a-4d59-9a55-8c1d6f0b2a11
  admin list-family --parent-id=6f1c3c1e-2b0a-4d59-9a55-8c1d6f0b2a11
`

const defaultTimeout = 2 * time.Minute

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage + "\n")
		os.Exit(1)
	}

	log := logger.New(logger.Options{Level: os.Getenv("LOG_LEVEL")})

	var err error
	switch command := os.Args[1]; command {
	case "migrate":
		err = runMigrate(os.Args[2:], log)
	case "create-admin":
		err = runCreateAdmin(os.Args[2:], log)
	case "delete-user":
		err = runDeleteUser(os.Args[2:], log)
	case "list-family":
		err = runListFamily(os.Args[2:])
	case "list-admins":
		err = runListAdmins(os.Args[2:])
	case "help", "-h", "--help":
		fmt.Print(usage + "\n")
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		fmt.Print(usage + "\n")
		os.Exit(1)
	}

	if err != nil {
		log.Fatal().Err(err).Str("command", os.Args[1]).Msg("command failed")
	}
}

// connect loads the configuration and opens the database.
func connect() (*config.Config, *postgres.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func runMigrate(args []string, log zerolog.Logger) error {
	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	timeout := fs.Duration("timeout", defaultTimeout, "Timeout for the operation")
	if err := fs.Parse(args); err != nil {
		return err
	}

	_, db, err := connect()
	if err != nil {
		return err
	}
	defer db.Close()

	migs, err := postgres.ReadMigrations(migrations.FS)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	ran, err := db.Migrate(ctx, migs, appliedBy())
	for _, m := range ran {
		log.Info().Int("version", m.Version).Str("name", m.Name).Msg("migration applied")
	}
	if err != nil {
		return err
	}
	if len(ran) == 0 {
		log.Info().Msg("schema is up to date")
	}
	return nil
}

func runCreateAdmin(args []string, log zerolog.Logger) error {
	fs := flag.NewFlagSet("create-admin", flag.ExitOnError)
	email := fs.String("email", "", "Admin email")
	name := fs.String("name", "", "Display name")
	password := fs.String("password", "", "Initial password (min 6 characters)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	*email = strings.ToLower(strings.TrimSpace(*email))
	if err := checkmail.ValidateFormat(*email); err != nil {
		return fmt.Errorf("invalid --email: %w", err)
	}
	if strings.TrimSpace(*name) == "" {
		return fmt.Errorf("--name is required")
	}
	if len(*password) < 6 {
		return fmt.Errorf("--password must have at least 6 characters")
	}

	cfg, db, err := connect()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	provider := authprovider.New(
		postgres.NewAuthRepository(db),
		auth.NewJWT(cfg.JWT.Secret, cfg.JWT.AccessTokenTTL),
		cfg.JWT.RefreshTokenTTL,
	)
	ident, err := provider.CreateUser(ctx, *email, *password)
	if err != nil {
		return err
	}

	p, err := postgres.NewProfileRepository(db).Create(ctx, profile.CreateParams{
		ID:    ident.ID,
		Name:  strings.TrimSpace(*name),
		Email: *email,
		Role:  profile.RoleAdmin,
	})
	if err != nil {
		if delErr := provider.DeleteUser(ctx, ident.ID); delErr != nil {
			log.Error().Err(delErr).Str("user_id", ident.ID.String()).Msg("failed to remove orphaned identity")
		}
		return err
	}

	log.Info().Str("user_id", p.ID.String()).Str("email", p.Email).Msg("admin created")
	return nil
}

func runDeleteUser(args []string, log zerolog.Logger) error {
	fs := flag.NewFlagSet("delete-user", flag.ExitOnError)
	rawID := fs.String("user-id", "", "Account ID to delete")
	if err := fs.Parse(args); err != nil {
		return err
	}

	userID, err := uuid.Parse(*rawID)
	if err != nil {
		return fmt.Errorf("invalid --user-id: %w", err)
	}

	_, db, err := connect()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	if err := postgres.NewAccountRepository(db).DeleteUserAndData(ctx, userID); err != nil {
		return err
	}
	log.Info().Str("user_id", userID.String()).Msg("account deleted")
	return nil
}

func runListFamily(args []string) error {
	fs := flag.NewFlagSet("list-family", flag.ExitOnError)
	rawID := fs.String("parent-id", "", "Guardian account ID")
	if err := fs.Parse(args); err != nil {
		return err
	}

	parentID, err := uuid.Parse(*rawID)
	if err != nil {
		return fmt.Errorf("invalid --parent-id: %w", err)
	}

	_, db, err := connect()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	parent, err := postgres.NewProfileRepository(db).GetByID(ctx, parentID)
	if err != nil {
		return err
	}
	children, err := postgres.NewChildRepository(db).ListByParent(ctx, parentID)
	if err != nil {
		return err
	}

	fmt.Printf("%s <%s> [%s]\n", parent.Name, parent.Email, parent.Role)
	for _, c := range children {
		allowance := "-"
		if c.AllowanceAmount.Valid {
			allowance = c.AllowanceAmount.Decimal.StringFixed(2)
			if c.AllowanceFrequency != nil {
				allowance += " " + string(*c.AllowanceFrequency)
			}
		}
		fmt.Printf("  %s  %s  allowance: %s\n", c.ID, c.Name, allowance)
	}
	if len(children) == 0 {
		fmt.Println("  (no dependents)")
	}
	return nil
}

func runListAdmins(args []string) error {
	fs := flag.NewFlagSet("list-admins", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	_, db, err := connect()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	admins, err := postgres.NewProfileRepository(db).ListByRole(ctx, profile.RoleAdmin)
	if err != nil {
		return err
	}
	for _, p := range admins {
		fmt.Printf("%s  %s <%s>\n", p.ID, p.Name, p.Email)
	}
	return nil
}

func appliedBy() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "admin-cli"
}
