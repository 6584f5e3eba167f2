package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v3"
	"github.com/xiaolu2333/watchlist/internal/domain"
	"github.com/xiaolu2333/watchlist/internal/service"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

var errPasswordMismatch = errors.New("the two passwords do not match")

func adminCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "admin",
		Usage: "Create or update the administrator account",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "username",
				Usage: "Login name (prompted when omitted)",
			},
			&cli.StringFlag{
				Name:  "password",
				Usage: "Password (prompted without echo when omitted)",
			},
		},
		Action: r.Admin,
	}
}

// Admin sets the owner's login credentials, creating the owner when the
// database has none.
func (r *Runner) Admin(ctx context.Context, cmd *cli.Command) error {
	cfg, err := r.setup(cmd)
	if err != nil {
		return err
	}

	username := cmd.String("username")
	if username == "" {
		if username, err = r.prompt("Username: "); err != nil {
			return err
		}
	}
	password := cmd.String("password")
	if password == "" {
		if password, err = r.promptNewPassword(); err != nil {
			return err
		}
	}
	if err := service.ValidateCredentials(username, password); err != nil {
		return err
	}

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	auth := service.NewAuthService(db.Users(), cfg.Auth.SecretKey, cfg.Auth.BcryptCost, cfg.Auth.SessionTTL.Duration)

	switch _, err := auth.Owner(ctx); {
	case err == nil:
		r.println("Updating user...")
	case errors.Is(err, domain.ErrNotFound):
		r.println("Creating user...")
	default:
		return fmt.Errorf("get owner: %w", err)
	}

	if _, _, err := auth.SetAdmin(ctx, username, password); err != nil {
		return fmt.Errorf("set admin: %w", err)
	}

	r.println("Done.")
	return nil
}

func (r *Runner) prompt(label string) (string, error) {
	fmt.Fprint(r.out, label)
	line, err := r.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read %s: %w", strings.TrimSuffix(label, ": "), err)
	}
	return strings.TrimSpace(line), nil
}

// promptNewPassword reads the password twice without echo.
func (r *Runner) promptNewPassword() (string, error) {
	first, err := r.readHidden("Password: ")
	if err != nil {
		return "", err
	}
	second, err := r.readHidden("Repeat for confirmation: ")
	if err != nil {
		return "", err
	}
	if first != second {
		return "", errPasswordMismatch
	}
	return first, nil
}

// readHidden reads a password without echo from a terminal. Other input,
// such as a pipe, is read as a line.
func (r *Runner) readHidden(label string) (string, error) {
	if r.stdinFd < 0 {
		return r.prompt(label)
	}

	fmt.Fprint(r.out, label)
	pw, err := readPassword(r.stdinFd)
	fmt.Fprintln(r.out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(pw), nil
}
