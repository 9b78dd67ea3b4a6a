package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/stemsi/institute-console/internal/backend"
	"github.com/stemsi/institute-console/internal/config"
	"github.com/stemsi/institute-console/internal/logger"
	"github.com/stemsi/institute-console/internal/model"
	"github.com/stemsi/institute-console/internal/repository"
	"github.com/stemsi/institute-console/internal/service"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.BackendTimeout+5*time.Second)
	defer cancel()

	// ─── Initialize Service ────────────────────────────────────────────
	client := backend.New(cfg.BackendURL, cfg.BackendTimeout, log)
	authService := service.NewAuthService(repository.NewTeacherRepository(client), repository.NewTokenRepository(client), log)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Printf("=== Obtain Backend Token (%s) ===\n", cfg.BackendURL)

	fmt.Print("Enter Username: ")
	username, _ := reader.ReadString('\n')
	username = strings.TrimSpace(username)
	if username == "" {
		fmt.Println("Error: Username is required")
		return
	}

	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading password")
		return
	}
	fmt.Println() // Newline after password input
	password := string(bytePassword)
	if password == "" {
		fmt.Println("Error: Password is required")
		return
	}

	// ─── Logic ─────────────────────────────────────────────────────────
	pair, err := authService.AdminLogin(ctx, model.AdminLoginRequest{Username: username, Password: password})
	if errors.Is(err, service.ErrInvalidCredentials) {
		fmt.Println("Error: Invalid username or password")
		os.Exit(1)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to obtain token")
	}

	fmt.Printf("\nAccess:  %s\nRefresh: %s\n", pair.Access, pair.Refresh)
	exp, err := pair.ExpiresAt()
	switch {
	case err != nil:
		fmt.Printf("Expiry could not be read: %v\n", err)
	case exp.IsZero():
		fmt.Println("Access token has no expiry")
	default:
		fmt.Printf("Access token expires at %s (in %s)\n", exp.Local().Format(time.RFC1123), time.Until(exp).Round(time.Second))
	}
}
