package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/vigilo-labs/vigil-backend/internal/config"
	"github.com/vigilo-labs/vigil-backend/internal/database"
	"github.com/vigilo-labs/vigil-backend/internal/logger"
	"github.com/vigilo-labs/vigil-backend/internal/model"
	"github.com/vigilo-labs/vigil-backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

// create-professor provisions a professor account from the command
// line, bypassing the OTP registration flow. Useful for bootstrapping
// a fresh deployment.
func main() {
	var credits int
	flag.IntVar(&credits, "credits", 10, "Initial exam credit balance")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, "pretty")

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Name: ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)

	fmt.Print("Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)

	fmt.Print("Password: ")
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read password")
	}
	password := strings.TrimSpace(string(passwordBytes))

	if name == "" || email == "" || password == "" {
		log.Fatal().Msg("Name, email and password are all required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash password")
	}

	users := repository.NewUserRepository(pool)

	exists, err := users.ExistsByEmail(ctx, email)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to check existing account")
	}
	if exists {
		log.Fatal().Str("email", email).Msg("An account with this email already exists")
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         model.RoleProfessor,
	}
	if err := users.Create(ctx, user); err != nil {
		log.Fatal().Err(err).Msg("Failed to create account")
	}

	if credits > 0 {
		if err := users.AddCredits(ctx, user.ID, credits); err != nil {
			log.Fatal().Err(err).Msg("Failed to grant initial credits")
		}
	}

	log.Info().Int("id", user.ID).Str("email", email).Int("credits", credits).
		Msg("Professor account created")
}
