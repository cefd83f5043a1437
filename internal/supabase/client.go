package supabase

import (
	"fmt"
	"strings"

	"github.com/supabase-community/supabase-go"
)

type Client struct {
	Supabase *supabase.Client
	baseURL  string
}

// NewClient connects with the service key; storage uploads need it to
// bypass bucket policies.
func NewClient(supabaseURL, serviceKey string) (*Client, error) {
	baseURL := strings.TrimSuffix(supabaseURL, "/")
	client, err := supabase.NewClient(baseURL, serviceKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}

	return &Client{
		Supabase: client,
		baseURL:  baseURL,
	}, nil
}
