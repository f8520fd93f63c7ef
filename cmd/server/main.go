package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/gogogo1024/accesskit"
	"github.com/gogogo1024/accesskit/acl"
	"github.com/gogogo1024/accesskit/internal/directory"
	"github.com/gogogo1024/accesskit/internal/handler"
	"github.com/gogogo1024/accesskit/internal/resource"
)

func main() {
	// Defensive: in some environments `go test ./...` may execute command mains.
	// Avoid starting a long-running listener from a test binary.
	if strings.HasSuffix(filepath.Base(os.Args[0]), ".test") {
		return
	}

	// .env is optional; missing file is fine.
	_ = godotenv.Load()

	configPath := flag.String("config", "accesskit.yaml", "config file path")
	addr := flag.String("addr", "", "listen address (overrides config)")
	flag.Parse()

	cfg, fromFile, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	applyEnv(&cfg)
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	static := directory.NewStatic()
	tree := resource.NewTree()
	var seed *seedFile
	if cfg.Seed.Path != "" {
		seed, err = loadSeed(cfg.Seed.Path)
		if err != nil {
			log.Fatalf("load seed: %v", err)
		}
		if err := seed.apply(static, tree); err != nil {
			log.Fatalf("apply seed: %v", err)
		}
		log.Printf("seeded %d users, %d groups, %d resources from %s",
			len(seed.Principals.Users), len(seed.Principals.Groups), len(seed.Resources), cfg.Seed.Path)
	}

	var principals accesskit.PrincipalDirectory = static
	factory := handler.ModelFactory(func(resourceID, actingUser string) accesskit.ResourceModel {
		return tree.Model(resourceID, actingUser)
	})

	if cfg.Redis.Addr != "" {
		dialT, readT, writeT, err := cfg.redisTimeouts()
		if err != nil {
			log.Fatalf("%v", err)
		}
		ttl, err := cfg.cacheTTL()
		if err != nil {
			log.Fatalf("%v", err)
		}
		client := redis.NewClient(&redis.Options{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			DialTimeout:  dialT,
			ReadTimeout:  readT,
			WriteTimeout: writeT,
		})
		ctx, cancel := context.WithTimeout(context.Background(), dialT)
		err = client.Ping(ctx).Err()
		cancel()
		if err != nil {
			log.Fatalf("redis connection failed: %v", err)
		}
		factory = func(resourceID, actingUser string) accesskit.ResourceModel {
			return resource.NewRedisModel(client, cfg.Redis.KeyPrefix, resourceID)
		}
		principals = directory.NewRedisCache(client, cfg.Redis.KeyPrefix, ttl, static)
		log.Printf("using redis resource models at %s", cfg.Redis.Addr)
	}

	if cfg.Milvus.Addr != "" {
		search, err := directory.NewSearch(cfg.Milvus.Addr)
		if err != nil {
			// Fall back to substring matching over the static directory.
			log.Printf("milvus unavailable, using fallback search: %v", err)
		} else {
			defer search.Close()
			if seed != nil {
				indexSeed(search, seed)
			}
			handler.SetSearch(search)
			log.Printf("using milvus principal search at %s", cfg.Milvus.Addr)
		}
	}

	handler.SetModelFactory(factory)
	handler.SetDirectory(principals)
	handler.SetFallbackSearch(static.Search)

	h := server.New(server.WithHostPorts(cfg.Server.Addr))
	handler.RegisterRoutes(h)

	log.Printf("accesskit listening on %s (config file loaded: %v)", cfg.Server.Addr, fromFile)
	h.Spin()
}

func indexSeed(search *directory.Search, seed *seedFile) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	for _, u := range seed.Principals.Users {
		ref := acl.Ref{Type: acl.TypeUser, ID: u.ID}
		info := accesskit.PrincipalInfo{Name: u.Name, Login: u.Login}
		if err := search.Index(ctx, ref, info); err != nil {
			log.Printf("index user %s: %v", u.ID, err)
		}
	}
	for _, g := range seed.Principals.Groups {
		ref := acl.Ref{Type: acl.TypeGroup, ID: g.ID}
		info := accesskit.PrincipalInfo{Name: g.Name, Description: g.Description}
		if err := search.Index(ctx, ref, info); err != nil {
			log.Printf("index group %s: %v", g.ID, err)
		}
	}
}
