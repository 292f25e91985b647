// Command token issues an access token for the admin API routes.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/cmlabs-hris/bstt-backend-go/internal/config"
	"github.com/cmlabs-hris/bstt-backend-go/internal/pkg/jwt"
)

func main() {
	user := flag.String("user", "", "user id recorded on uploads")
	admin := flag.Bool("admin", true, "grant access to uploads, ETL history and sync")
	flag.Parse()

	if *user == "" {
		log.Fatal("-user is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Error loading config: ", err)
	}

	svc := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	token, expiresAt, err := svc.GenerateAccessToken(*user, *admin)
	if err != nil {
		log.Fatal("Failed to issue token: ", err)
	}

	fmt.Println(token)
	log.Printf("expires at %s", time.Unix(expiresAt, 0).UTC().Format(time.RFC3339))
}
