// Command arena-token mints a signed session token for local testing.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/api"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/constants"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/logging"
)

func main() {
	userID := flag.String("user", "", "user id placed in the token subject")
	name := flag.String("name", "", "optional display name")
	ttl := flag.Duration("ttl", api.DefaultTokenTTL, "token lifetime")
	flag.Parse()

	secret := os.Getenv(constants.EnvSessionSecret)
	if secret == "" {
		logging.Fatal("Required environment variable not set", nil, logging.Fields{"var": constants.EnvSessionSecret})
	}
	tok, err := api.IssueToken([]byte(secret), *userID, *name, *ttl)
	if err != nil {
		logging.Fatal("Failed to issue token", err, logging.Fields{constants.LogFieldUserID: *userID})
	}
	fmt.Println(tok)
}
