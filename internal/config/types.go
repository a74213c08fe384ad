package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const (
	// DefaultToolName is the executable and tool-cache name.
	DefaultToolName = "vals"
	// DefaultRepository is the upstream GitHub repository publishing releases.
	DefaultRepository = "helmfile/vals"
	// DefaultVersion is used when the latest release cannot be determined.
	// renovate: github=helmfile/vals
	DefaultVersion = "v0.42.0"
	// DefaultServerURL is the GitHub host releases are fetched from.
	DefaultServerURL = "https://github.com"
	// DefaultArchiveExt is the release archive extension.
	DefaultArchiveExt = "tar.gz"
	// TagPolicyKeep uses a looked-up latest tag as published.
	TagPolicyKeep = "keep"
	// TagPolicyPrefix adds a missing "v" to a looked-up latest tag.
	TagPolicyPrefix = "prefix"

	// DefaultMaxSearchDepth bounds the executable search inside an extracted archive.
	DefaultMaxSearchDepth = 4

	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 5 * time.Minute
	// DefaultRetries is the default number of download retries
	DefaultRetries = 3
	// DefaultUserAgent is the User-Agent header sent with requests
	DefaultUserAgent = "setup-vals"
)

// Config is the configuration of a single setup run.
type Config struct {
	// ToolName is the name of the executable inside the archive and the tool-cache key
	ToolName string `yaml:"tool"`

	// Repository is the GitHub repository in owner/name form
	Repository string `yaml:"repository"`

	// DefaultVersion is the fallback when "latest" cannot be resolved
	DefaultVersion string `yaml:"defaultVersion"`

	// ServerURL is the scheme and host serving releases
	ServerURL string `yaml:"serverURL"`

	// ArchiveExt is the extension of release archives (without the dot)
	ArchiveExt string `yaml:"archiveExt"`

	// MaxSearchDepth bounds the directory walk used to locate the executable
	MaxSearchDepth int `yaml:"maxSearchDepth"`

	// TagPolicy shapes the tag returned by the latest-release lookup ("keep" or "prefix")
	TagPolicy string `yaml:"tagPolicy"`

	// HTTP configures release lookups and downloads
	HTTP HTTPConfig `yaml:"http"`
}

// HTTPConfig contains HTTP client settings.
type HTTPConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	Retries   int           `yaml:"retries"`
	UserAgent string        `yaml:"userAgent"`
}

// Default returns the configuration the action ships with.
func Default() Config {
	return Config{
		ToolName:       DefaultToolName,
		Repository:     DefaultRepository,
		DefaultVersion: DefaultVersion,
		ServerURL:      DefaultServerURL,
		ArchiveExt:     DefaultArchiveExt,
		MaxSearchDepth: DefaultMaxSearchDepth,
		TagPolicy:      TagPolicyKeep,
		HTTP: HTTPConfig{
			Timeout:   DefaultTimeout,
			Retries:   DefaultRetries,
			UserAgent: DefaultUserAgent,
		},
	}
}

// RepositoryURL returns the web URL of the repository.
func (c Config) RepositoryURL() string {
	return strings.TrimRight(c.ServerURL, "/") + "/" + c.Repository
}

// LatestReleaseURL returns the endpoint answering with the newest release tag.
func (c Config) LatestReleaseURL() string {
	return c.RepositoryURL() + "/releases/latest"
}

// ReleaseDownloadURL returns the base URL holding the assets of a release tag.
func (c Config) ReleaseDownloadURL(tag string) string {
	return fmt.Sprintf("%s/releases/download/%s", c.RepositoryURL(), tag)
}

// Validate performs basic validation on a Config.
func (c Config) Validate() error {
	if !toolNamePattern.MatchString(c.ToolName) {
		return &ValidationError{Field: "tool", Message: fmt.Sprintf("invalid tool name %q", c.ToolName)}
	}

	if !repositoryPattern.MatchString(c.Repository) {
		return &ValidationError{
			Field:   "repository",
			Message: fmt.Sprintf("expected owner/name, got %q", c.Repository),
		}
	}

	if strings.TrimSpace(c.DefaultVersion) == "" {
		return &ValidationError{Field: "defaultVersion", Message: "cannot be empty"}
	}

	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return &ValidationError{Field: "serverURL", Message: err.Error()}
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return &ValidationError{
			Field:   "serverURL",
			Message: fmt.Sprintf("must use https:// or http:// scheme (got: %q)", u.Scheme),
		}
	}

	if c.ArchiveExt != "tar.gz" && c.ArchiveExt != "tgz" {
		return &ValidationError{Field: "archiveExt", Message: fmt.Sprintf("unsupported archive format %q", c.ArchiveExt)}
	}

	if c.MaxSearchDepth < 1 {
		return &ValidationError{Field: "maxSearchDepth", Message: "must be at least 1"}
	}

	if c.TagPolicy != TagPolicyKeep && c.TagPolicy != TagPolicyPrefix {
		return &ValidationError{
			Field:   "tagPolicy",
			Message: fmt.Sprintf("must be %q or %q (got: %q)", TagPolicyKeep, TagPolicyPrefix, c.TagPolicy),
		}
	}

	if c.HTTP.Retries < 0 {
		return &ValidationError{Field: "http.retries", Message: "cannot be negative"}
	}

	if c.HTTP.Timeout <= 0 {
		return &ValidationError{Field: "http.timeout", Message: "must be positive"}
	}

	return nil
}

// ValidationError represents a config validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return "config validation failed for " + e.Field + ": " + e.Message
	}
	return "config validation failed: " + e.Message
}

var (
	toolNamePattern   = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)
	repositoryPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+/[A-Za-z0-9_.-]+$`)
)
