package runtime

import (
	"context"
	"fmt"
	"io"

	"prsummary.dev/prsummary/internal/config"
	"prsummary.dev/prsummary/internal/github"
	"prsummary.dev/prsummary/internal/output"
	"prsummary.dev/prsummary/internal/render"
	"prsummary.dev/prsummary/internal/resolver"
)

// Context holds what every command needs: the logger, the configuration and
// the forge client
type Context struct {
	context.Context
	Splog  *output.Splog
	Config *config.Config
	Client github.Client
}

// Options are the global command line overrides
type Options struct {
	ConfigPath string
	API        string
	Hostname   string
	Verbose    bool
	// Writer receives console output; nil means stdout
	Writer io.Writer
}

// ClientFactory builds the forge client. Tests replace it to point at a mock server.
var ClientFactory = github.NewClient

// TokenSource finds the forge token
var TokenSource = github.GetToken

// NewContext creates a context from already built parts
func NewContext(ctx context.Context, cfg *config.Config, client github.Client, splog *output.Splog) *Context {
	return &Context{
		Context: ctx,
		Splog:   splog,
		Config:  cfg,
		Client:  client,
	}
}

// GetContext loads the configuration, applies overrides and connects to the forge
func GetContext(ctx context.Context, opts Options) (*Context, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.API != "" {
		cfg.API = opts.API
	}
	if opts.Hostname != "" {
		cfg.Hostname = opts.Hostname
	}
	flavor, err := github.ParseFlavor(cfg.API)
	if err != nil {
		return nil, err
	}

	splog, err := output.NewSplogWithOptions(output.Options{
		Writer:  opts.Writer,
		LogFile: cfg.LogFile,
		Verbose: opts.Verbose,
	})
	if err != nil {
		return nil, err
	}
	if cfg.Path() != "" {
		splog.Debug("Using config %s", cfg.Path())
	}

	token, err := TokenSource(ctx)
	if err != nil {
		_ = splog.Close()
		return nil, fmt.Errorf("no GitHub token: %w\nSet GITHUB_TOKEN or run 'gh auth login'", err)
	}

	client, err := ClientFactory(ctx, flavor, cfg.Hostname, token)
	if err != nil {
		_ = splog.Close()
		return nil, fmt.Errorf("failed to create GitHub client: %w", err)
	}
	splog.Debug("Using the %s API of %s", flavor, cfg.Hostname)

	return NewContext(ctx, cfg, client, splog), nil
}

// Resolver returns a resolver configured from the context
func (c *Context) Resolver() *resolver.Resolver {
	return resolver.New(c.Client, c.Config.ResolverOptions(), c.Splog)
}

// Renderer loads the configured release-note template
func (c *Context) Renderer() (*render.Renderer, error) {
	return render.Load(c.Config.Template)
}

// Close releases the log file
func (c *Context) Close() error {
	return c.Splog.Close()
}
