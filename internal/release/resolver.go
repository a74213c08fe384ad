package release

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jkroepke/setup-vals/internal/config"
	"github.com/jkroepke/setup-vals/internal/logger"
)

// maxResponseSize caps the latest-release body we are willing to decode.
const maxResponseSize = 1 << 20

// TagPolicy decides how a tag returned by the latest-release lookup is
// shaped before use.
type TagPolicy int

const (
	// KeepTag returns the tag exactly as published (whitespace trimmed).
	KeepTag TagPolicy = iota
	// PrefixTag additionally ensures a leading "v".
	PrefixTag
)

// String returns the string representation of the policy
func (p TagPolicy) String() string {
	switch p {
	case KeepTag:
		return "keep"
	case PrefixTag:
		return "prefix"
	default:
		return "unknown"
	}
}

// PolicyFromConfig maps a configured tag policy name to a TagPolicy.
// Unknown names fall back to KeepTag.
func PolicyFromConfig(name string) TagPolicy {
	if name == config.TagPolicyPrefix {
		return PrefixTag
	}
	return KeepTag
}

// Resolver turns a requested version into a concrete release tag.
type Resolver struct {
	cfg    config.Config
	client *http.Client
	log    *logger.Logger
	policy TagPolicy
	token  string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithHTTPClient replaces the HTTP client used for the latest-release lookup.
func WithHTTPClient(client *http.Client) Option {
	return func(r *Resolver) {
		r.client = client
	}
}

// WithTagPolicy selects how looked-up tags are shaped.
func WithTagPolicy(policy TagPolicy) Option {
	return func(r *Resolver) {
		r.policy = policy
	}
}

// WithToken authenticates the latest-release lookup, which raises the
// rate limit on shared runners.
func WithToken(token string) Option {
	return func(r *Resolver) {
		r.token = token
	}
}

// NewResolver creates a resolver for the tool described by cfg. The tag
// policy comes from cfg.TagPolicy unless WithTagPolicy overrides it.
func NewResolver(cfg config.Config, log *logger.Logger, opts ...Option) *Resolver {
	r := &Resolver{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.HTTP.Timeout},
		log:    log,
		policy: PolicyFromConfig(cfg.TagPolicy),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Resolve returns the concrete version for requested. An empty request is
// treated like "latest".
func (r *Resolver) Resolve(ctx context.Context, requested string) string {
	requested = strings.TrimSpace(requested)

	if requested == "" || IsLatest(requested) {
		return r.Latest(ctx)
	}

	return EnsurePrefix(requested)
}

// Latest returns the newest release tag, or the configured default version
// when it cannot be determined.
func (r *Resolver) Latest(ctx context.Context) string {
	url := r.cfg.LatestReleaseURL()

	tag, err := r.fetchLatest(ctx, url)
	if err != nil {
		r.log.Warnf("Cannot get the latest %s info from %s. Error %v. Using default version %s.",
			r.cfg.ToolName, url, err, r.cfg.DefaultVersion)
		return r.cfg.DefaultVersion
	}

	if r.policy == PrefixTag {
		tag = EnsurePrefix(tag)
	}

	r.log.Debugw("resolved latest release", "tag", tag, "policy", r.policy.String())
	return tag
}

type latestRelease struct {
	TagName string `json:"tag_name"`
}

// fetchLatest queries the latest-release endpoint, which answers with JSON
// when asked to.
func (r *Resolver) fetchLatest(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", r.cfg.HTTP.UserAgent)
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var release latestRelease
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&release); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	tag := strings.TrimSpace(release.TagName)
	if tag == "" {
		return "", fmt.Errorf("invalid response: missing tag_name")
	}

	return tag, nil
}
