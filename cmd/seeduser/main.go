// Crea o actualiza el usuario administrador inicial.
// Uso: go run ./cmd/seeduser -username admin -password secreto
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"boleteria/internal/infra"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	dbPath := flag.String("db", envOr("DB_PATH", "./data/boleteria.db"), "ruta del archivo SQLite")
	username := flag.String("username", "admin", "nombre de usuario")
	password := flag.String("password", "", "contraseña (min 8 caracteres)")
	nombre := flag.String("nombre", "Administrador", "nombre visible")
	rol := flag.String("rol", "admin", "vendedor | admin")
	flag.Parse()

	if len(*password) < 8 {
		log.Fatal("password must have at least 8 characters")
	}
	if *rol != "admin" && *rol != "vendedor" {
		log.Fatalf("invalid rol %q", *rol)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), 12)
	if err != nil {
		log.Fatalf("bcrypt error: %v", err)
	}

	// NewDatabase migrates, so the seed works on a fresh file too.
	db, err := infra.NewDatabase(*dbPath)
	if err != nil {
		log.Fatalf("db open error: %v", err)
	}
	defer infra.CloseDatabase(db)

	result := db.WithContext(context.Background()).Exec(`
		INSERT INTO usuarios (username, nombre, password_hash, rol, activo, created_at, updated_at)
		VALUES (?, ?, ?, ?, 1, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT (username) DO UPDATE
		SET password_hash = excluded.password_hash,
		    nombre = excluded.nombre,
		    rol = excluded.rol,
		    activo = 1,
		    updated_at = CURRENT_TIMESTAMP
	`, *username, *nombre, string(hash), *rol)

	if result.Error != nil {
		log.Fatalf("insert error: %v", result.Error)
	}
	fmt.Printf("Usuario '%s' (%s) creado/actualizado en %s\n", *username, *rol, *dbPath)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
