// Command createadmin seeds an ADMIN account.  Public registration only
// produces members, so the first administrator is created from the shell:
//
//	createadmin -name "Head Librarian" -email admin@library.local -password secret
package main

import (
	"context"
	"flag"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/iliyamo/library-inventory/internal/config"
	"github.com/iliyamo/library-inventory/internal/database"
	"github.com/iliyamo/library-inventory/internal/model"
	"github.com/iliyamo/library-inventory/internal/repository"
)

func main() {
	name := flag.String("name", "", "display name for the admin account")
	email := flag.String("email", "", "login email for the admin account")
	password := flag.String("password", "", "initial password")
	flag.Parse()

	*name = strings.TrimSpace(*name)
	*email = strings.ToLower(strings.TrimSpace(*email))
	if *name == "" || *email == "" || *password == "" {
		log.Fatal("usage: createadmin -name NAME -email EMAIL -password PASSWORD")
	}

	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	users := repository.NewUserRepo(db)
	uid, err := users.Create(ctx, *name, *email, *password, model.RoleAdmin, cfg.BcryptCost)
	if err != nil {
		if err == repository.ErrEmailExists {
			log.Fatalf("account %s already exists", *email)
		}
		log.Fatalf("create admin: %v", err)
	}
	log.Printf("created admin %s (id=%d)", *email, uid)
}
