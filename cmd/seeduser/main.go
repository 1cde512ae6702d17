// cmd/seeduser/main.go: creates or resets the first admin account.
// Uso: go run ./cmd/seeduser -username admin -password 'secreto' -nombre 'Administrador'
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"crmventas/internal/config"
	"crmventas/internal/identity"
	"crmventas/internal/infra"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	username := flag.String("username", "admin", "username del administrador")
	password := flag.String("password", os.Getenv("SEED_ADMIN_PASSWORD"), "password (o SEED_ADMIN_PASSWORD)")
	nombre := flag.String("nombre", "Administrador", "nombre visible")
	email := flag.String("email", "", "email opcional")
	flag.Parse()

	if *username == "" || *password == "" {
		log.Fatal().Msg("username y password son requeridos")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), 12)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt error")
	}

	var emailArg *string
	if *email != "" {
		emailArg = email
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	result := db.WithContext(ctx).Exec(`
		INSERT INTO usuarios (id, username, nombre, email, password_hash, rol, team, activo, created_at, updated_at)
		VALUES (gen_random_uuid(), ?, ?, ?, ?, ?, '', true, NOW(), NOW())
		ON CONFLICT (username) DO UPDATE
		SET password_hash = EXCLUDED.password_hash,
		    nombre = EXCLUDED.nombre,
		    email = COALESCE(EXCLUDED.email, usuarios.email),
		    rol = EXCLUDED.rol,
		    activo = true,
		    updated_at = NOW()
	`, *username, *nombre, emailArg, string(hash), identity.RolAdmin.String())

	if result.Error != nil {
		log.Fatal().Err(result.Error).Msg("insert error")
	}
	log.Info().Str("username", *username).Msg("admin creado/actualizado")
}
