// Command token issues a bearer token for the reports API, signed with
// ALBAYAN_AUTH_SECRET.
// Usage: token -sub ci-pipeline -ttl 720h
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"albayan/internal/config"
	"albayan/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	subject := flag.String("sub", "", "token subject (required)")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	if *subject == "" {
		flag.Usage()
		return errors.New("-sub is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if !cfg.Auth.Enabled() {
		return errors.New("ALBAYAN_AUTH_SECRET is not set")
	}

	token, expiry, err := service.NewAuthService(cfg.Auth).IssueToken(*subject, *ttl)
	if err != nil {
		return err
	}
	fmt.Println(token)
	log.Printf("token for %q expires %s", *subject, expiry.Format(time.RFC3339))
	return nil
}
