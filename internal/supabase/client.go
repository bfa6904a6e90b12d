package supabase

import (
	"strings"

	"github.com/supabase-community/supabase-go"
	"incubation-backend/internal/config"
)

type Client struct {
	Supabase *supabase.Client
	Config   *config.Config
}

func NewClient(cfg *config.Config) (*Client, error) {
	client, err := supabase.NewClient(baseURL(cfg.SupabaseURL), cfg.SupabasePublishableKey, nil)
	if err != nil {
		return nil, err
	}

	return &Client{
		Supabase: client,
		Config:   cfg,
	}, nil
}

func baseURL(url string) string {
	return strings.TrimRight(url, "/")
}
