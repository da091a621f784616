// Command token signs a bearer token. Roles are vendor, operator or visitor; only a visitor
// token links a scan to the account named by -sub.
//
//	token -sub vendor-123 -role vendor -ttl 720h
//	token -sub 6f1c2d3e-4b5a-4c6d-8e7f-9a0b1c2d3e4f -role visitor
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"conreach/config"
	"conreach/internal/adapters/auth"
	"conreach/internal/domain"
)

func main() {
	sub := flag.String("sub", "", "subject (vendor, operator or user id)")
	roles := flag.String("role", "vendor", "comma separated roles")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	if *sub == "" {
		fmt.Fprintln(os.Stderr, "-sub is required")
		os.Exit(2)
	}
	roleList, err := parseRoles(*roles)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	signer, err := auth.NewJWT(cfg.Auth.JWTSecret)
	if err != nil {
		slog.Error("cannot sign tokens", "err", err)
		os.Exit(1)
	}
	token, err := signer.Sign(*sub, roleList, *ttl)
	if err != nil {
		slog.Error("sign failed", "err", err)
		os.Exit(1)
	}
	fmt.Println(token)
}

func parseRoles(raw string) ([]string, error) {
	var roles []string
	for _, r := range strings.Split(raw, ",") {
		r = strings.TrimSpace(r)
		switch r {
		case "":
			continue
		case domain.RoleVendor, domain.RoleOperator, domain.RoleVisitor:
			roles = append(roles, r)
		default:
			return nil, fmt.Errorf("unknown role %q", r)
		}
	}
	if len(roles) == 0 {
		return nil, errors.New("-role needs at least one role")
	}
	return roles, nil
}
