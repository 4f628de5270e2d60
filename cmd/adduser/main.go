package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"price-board/internal/auth"
	"price-board/internal/config"
	"price-board/internal/repository/jsonfile"
	"price-board/internal/service"
)

// readPassword is swapped out in tests to avoid touching the terminal.
var readPassword = term.ReadPassword

// isTerminal reports whether stdin is an interactive terminal.
var isTerminal = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stderr); err != nil {
		logger.Fatal(err)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, out io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	fs := flag.NewFlagSet("adduser", flag.ContinueOnError)
	fs.SetOutput(out)
	username := fs.String("u", "", "username to create")
	file := fs.String("f", cfg.Users.File, "path to the users file")
	cost := fs.Int("cost", cfg.Auth.BcryptCost, "bcrypt cost factor")
	if err := fs.Parse(args); err != nil {
		return err
	}

	reader := bufio.NewReader(stdin)
	if strings.TrimSpace(*username) == "" {
		if _, err := fmt.Fprint(out, "Username: "); err != nil {
			return err
		}
		line, err := reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return fmt.Errorf("read username: %w", err)
		}
		*username = strings.TrimSpace(line)
	}

	password, err := promptPassword(reader, out)
	if err != nil {
		return err
	}

	repo := jsonfile.NewUserRepository(*file)
	if err := repo.Init(ctx); err != nil {
		return fmt.Errorf("init user repository: %w", err)
	}

	// adding users never issues tokens
	users := service.NewUserService(repo, auth.NewPasswordHasher(*cost), nil)
	user, err := users.AddUser(ctx, *username, password)
	if err != nil {
		if errors.Is(err, service.ErrUserAlreadyExists) {
			return fmt.Errorf("user %q already exists in %s", *username, *file)
		}
		return err
	}

	_, err = fmt.Fprintf(out, "added user %s to %s\n", user.Username, *file)
	return err
}

func promptPassword(reader *bufio.Reader, out io.Writer) (string, error) {
	if _, err := fmt.Fprint(out, "Password: "); err != nil {
		return "", err
	}

	if isTerminal() {
		pw, err := readPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(pw), nil
	}

	line, err := reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
