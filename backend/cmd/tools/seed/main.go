// seed fills an empty database with a few users and some content: authored
// and trending threads, replies, reactions, and saved items including one
// saved reference whose thread was deleted afterwards.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/agora-forum/agora/backend/internal/storage/pg"
	"github.com/agora-forum/agora/shared/config"
	"github.com/agora-forum/agora/shared/domain"
	"github.com/agora-forum/agora/shared/jwt"
	"github.com/agora-forum/agora/shared/logger"
	"github.com/jessevdk/go-flags"
)

var opts = struct {
	ConfigFolder string `long:"config_folder" env:"CONFIG_FOLDER" default:"backend/config" description:"path to folder with public.yaml and private.yaml"`
	Password     string `long:"password" default:"password" description:"password of every seeded user"`
}{}

func main() {
	if _, err := flags.Parse(&opts); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	cfg := config.MustLoad(opts.ConfigFolder)
	logger.Initialize(cfg.Public.LogLevel, cfg.Public.LogJSON)

	storage, err := pg.New(cfg)
	if err != nil {
		logger.Log.Error("failed to connect", "error", err)
		os.Exit(1)
	}
	defer storage.Cleanup()

	users, err := seed(context.Background(), storage)
	if err != nil {
		logger.Log.Error("seeding failed", "error", err)
		os.Exit(1)
	}

	issuer := jwt.New(cfg.JwtKey(), cfg.JwtTTL())
	for _, u := range users {
		token, err := issuer.NewToken(u.id)
		if err != nil {
			logger.Log.Error("failed to sign token", "error", err)
			os.Exit(1)
		}
		fmt.Printf("%s\t%s\t%s\n", u.name, u.id, token)
	}
}

type seededUser struct {
	name string
	id   domain.UserId
}

func seed(ctx context.Context, s *pg.Storage) ([]seededUser, error) {
	var users []seededUser
	for _, u := range []domain.UserCreationData{
		{Name: "Ann", Email: "ann@example.com", Image: "https://example.com/ann.png", Role: domain.RoleAdmin},
		{Name: "Bob", Email: "bob@example.com", Image: "https://example.com/bob.png"},
		{Name: "Cid", Email: "cid@example.com"},
	} {
		u.Password = opts.Password
		id, err := s.CreateUser(ctx, u)
		if err != nil {
			return nil, err
		}
		users = append(users, seededUser{name: u.Name, id: id})
	}
	ann, bob, cid := users[0].id, users[1].id, users[2].id

	welcome, err := s.CreateThread(ctx, domain.Threads, domain.ThreadCreationData{
		Title: "Welcome", Content: "Say hi here", Category: "general", Author: ann,
	})
	if err != nil {
		return nil, err
	}
	gear, err := s.CreateThread(ctx, domain.Threads, domain.ThreadCreationData{
		Title: "Favourite gear", Content: "What do you use?", Category: "hardware", Author: bob,
	})
	if err != nil {
		return nil, err
	}
	hi, err := s.CreateReply(ctx, domain.Replies, domain.ReplyCreationData{Content: "hi!", Author: bob, Thread: welcome})
	if err != nil {
		return nil, err
	}
	keyboard, err := s.CreateReply(ctx, domain.Replies, domain.ReplyCreationData{Content: "a mechanical keyboard", Author: cid, Thread: gear})
	if err != nil {
		return nil, err
	}

	topic, err := s.CreateThread(ctx, domain.TrendingTopics, domain.ThreadCreationData{
		Title: "Release day", Content: "It is out", Category: "news", Author: ann,
	})
	if err != nil {
		return nil, err
	}
	topicReply, err := s.CreateReply(ctx, domain.TrendingReplies, domain.ReplyCreationData{Content: "finally", Author: cid, Thread: topic})
	if err != nil {
		return nil, err
	}

	// removed after being saved so Bob keeps a dangling reference
	doomed, err := s.CreateThread(ctx, domain.Threads, domain.ThreadCreationData{
		Title: "Temporary", Content: "soon gone", Category: "general", Author: cid,
	})
	if err != nil {
		return nil, err
	}

	reactions := []struct {
		coll     domain.Collection
		item     string
		user     domain.UserId
		reaction domain.Reaction
	}{
		{domain.Threads, welcome, bob, domain.Like},
		{domain.Threads, welcome, cid, domain.Like},
		{domain.Threads, gear, ann, domain.Dislike},
		{domain.Replies, hi, ann, domain.Like},
		{domain.Replies, keyboard, bob, domain.Like},
		{domain.TrendingTopics, topic, bob, domain.Like},
	}
	for _, r := range reactions {
		if err := s.AddReaction(ctx, r.coll, r.item, r.user, r.reaction); err != nil {
			return nil, err
		}
	}

	saves := []struct {
		user domain.UserId
		kind domain.SavedKind
		item string
	}{
		{bob, domain.SavedPosts, welcome},
		{bob, domain.SavedPosts, doomed},
		{bob, domain.SavedReplies, keyboard},
		{bob, domain.SavedTrendingTopics, topic},
		{bob, domain.SavedTrendingReplies, topicReply},
		{ann, domain.SavedPosts, gear},
	}
	for _, sv := range saves {
		if err := s.SaveItem(ctx, sv.user, sv.kind, sv.item); err != nil {
			return nil, err
		}
	}

	if err := s.DeleteItem(ctx, domain.Threads, doomed); err != nil {
		return nil, fmt.Errorf("failed to remove temporary thread: %w", err)
	}

	logger.Log.Info("seeded", "users", len(users))
	return users, nil
}
