package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vstrecha/vstrecha/backend/internal/adapters/database/redis/friends"
)

type Client struct {
	Raw     *redis.Client
	Friends *friends.Storage
}

type Options struct {
	Host       string
	Port       string
	Password   string
	DB         int
	FriendsTTL time.Duration
}

func New(opts Options) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", opts.Host, opts.Port),
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping friends cache: %w", err)
	}

	return &Client{
		Raw:     client,
		Friends: friends.NewStorage(client, opts.FriendsTTL),
	}, nil
}

func (c *Client) Close() error {
	return c.Raw.Close()
}
