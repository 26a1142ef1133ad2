// issue-token prints a signed bearer token for an existing user id so the API
// can be exercised locally. Tokens are normally issued by the login flow.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/agora-forum/agora/backend/internal/storage/pg"
	"github.com/agora-forum/agora/shared/config"
	"github.com/agora-forum/agora/shared/jwt"
	"github.com/agora-forum/agora/shared/logger"
	"github.com/jessevdk/go-flags"
)

var opts = struct {
	ConfigFolder string        `long:"config_folder" env:"CONFIG_FOLDER" default:"backend/config" description:"path to folder with public.yaml and private.yaml"`
	User         string        `long:"user" required:"true" description:"user id to put into the token"`
	Password     string        `long:"password" description:"when set, the password is checked against the database first"`
	TTL          time.Duration `long:"ttl" description:"token lifetime, defaults to jwt_ttl from config"`
}{}

func main() {
	if _, err := flags.Parse(&opts); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	cfg := config.MustLoad(opts.ConfigFolder)

	if opts.Password != "" {
		if err := checkPassword(cfg); err != nil {
			logger.Log.Error("credentials rejected", "user_id", opts.User, "error", err)
			os.Exit(1)
		}
	}

	ttl := cfg.JwtTTL()
	if opts.TTL > 0 {
		ttl = opts.TTL
	}
	token, err := jwt.New(cfg.JwtKey(), ttl).NewToken(opts.User)
	if err != nil {
		logger.Log.Error("failed to sign token", "error", err)
		os.Exit(1)
	}
	fmt.Println(token)
}

func checkPassword(cfg *config.Config) error {
	storage, err := pg.New(cfg)
	if err != nil {
		return err
	}
	defer storage.Cleanup()

	ok, err := storage.CheckPassword(context.Background(), opts.User, opts.Password)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("wrong password")
	}
	return nil
}
