package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/upb/proof-layer/services"
)

// SupabaseParams are the inputs for ResolveSupabaseURL
type SupabaseParams struct {
	URL       string
	Password  string
	UsePooler bool
	Region    string
}

// ResolveSupabaseURL turns SUPABASE_URL into a Postgres connection string.
// postgres:// and postgresql:// URLs are returned unchanged. A project URL
// (https://<ref>.supabase.co) is converted to the direct host
// db.<ref>.supabase.co:5432, or to the regional pooler on port 6543.
func ResolveSupabaseURL(p SupabaseParams) (string, error) {
	raw := strings.TrimSpace(p.URL)
	if raw == "" {
		return "", fmt.Errorf("SUPABASE_URL is required")
	}
	if strings.HasPrefix(raw, "postgres://") || strings.HasPrefix(raw, "postgresql://") {
		return raw, nil
	}
	if !strings.HasPrefix(raw, "https://") {
		return "", fmt.Errorf("invalid SUPABASE_URL format: expected postgresql://... or https://<ref>.supabase.co: %w", services.ErrInvalidDatabaseURL)
	}
	if p.Password == "" {
		return "", fmt.Errorf("SUPABASE_DB_PASSWORD is required for Postgres connections")
	}

	ref := strings.Split(strings.TrimPrefix(raw, "https://"), ".")[0]
	if ref == "" {
		return "", fmt.Errorf("could not extract project ref from SUPABASE_URL: %w", services.ErrInvalidDatabaseURL)
	}

	host := fmt.Sprintf("db.%s.supabase.co:5432", ref)
	if p.UsePooler {
		region := p.Region
		if region == "" {
			region = "us-east-1"
		}
		host = fmt.Sprintf("aws-0-%s.pooler.supabase.com:6543", region)
	}

	u := url.URL{
		Scheme:   "postgresql",
		User:     url.UserPassword("postgres."+ref, p.Password),
		Host:     host,
		Path:     "/postgres",
		RawQuery: "sslmode=require&connect_timeout=5",
	}
	return u.String(), nil
}
