// Command seed-user creates or replaces a portal user with a bcrypt-hashed
// password. Run it once per operator; there is no self-service signup.
package main

import (
	"context"
	"flag"
	"os"
	"strings"

	"github.com/jfbetancur/consorcio-manager/internal/auth"
	infraFS "github.com/jfbetancur/consorcio-manager/internal/infra/firestore"
	"github.com/jfbetancur/consorcio-manager/internal/logger"
)

func main() {
	var (
		project  = flag.String("project", os.Getenv("GCP_PROJECT"), "GCP project id (or set GCP_PROJECT env)")
		database = flag.String("database", envOr("FIRESTORE_DATABASE", "(default)"), "Firestore database id (or set FIRESTORE_DATABASE env)")
		username = flag.String("username", "", "Username to create or replace")
		password = flag.String("password", os.Getenv("SEED_PASSWORD"), "Password (or set SEED_PASSWORD env)")
		roles    = flag.String("roles", auth.RoleConsulta, "Comma-separated roles (consulta, admin)")
	)
	flag.Parse()

	log := logger.New()

	if *project == "" {
		log.Fatal().Msg("GCP project is required (-project or GCP_PROJECT)")
	}
	if *username == "" || *password == "" {
		log.Fatal().Msg("-username and a password are required")
	}

	var roleList []string
	for _, r := range strings.Split(*roles, ",") {
		if r = strings.TrimSpace(r); r != "" {
			roleList = append(roleList, r)
		}
	}

	ctx := context.Background()

	client, err := infraFS.NewClient(ctx, *project, *database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Firestore client")
	}
	defer client.Close()

	users := infraFS.NewUserRepository(client)
	if err := users.Seed(ctx, *username, *password, roleList); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed user")
	}

	log.Info().Str("username", *username).Strs("roles", roleList).Msg("User seeded")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
