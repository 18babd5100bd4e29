package main

import (
	"context"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/archive"
	"github.com/sells-group/prospect-cli/internal/config"
	"github.com/sells-group/prospect-cli/internal/crm"
	"github.com/sells-group/prospect-cli/internal/discovery"
	"github.com/sells-group/prospect-cli/internal/llm"
	"github.com/sells-group/prospect-cli/internal/outreach"
	"github.com/sells-group/prospect-cli/internal/pipeline"
	"github.com/sells-group/prospect-cli/internal/research"
	"github.com/sells-group/prospect-cli/internal/resilience"
	"github.com/sells-group/prospect-cli/internal/store"
	"github.com/sells-group/prospect-cli/pkg/acsemail"
	anthropicpkg "github.com/sells-group/prospect-cli/pkg/anthropic"
	"github.com/sells-group/prospect-cli/pkg/gemini"
	sfpkg "github.com/sells-group/prospect-cli/pkg/salesforce"
	"github.com/sells-group/prospect-cli/pkg/serpapi"
)

// pipelineEnv holds the store, the pipeline, and the optional archiver
// needed by the generate/process/serve commands.
type pipelineEnv struct {
	Store    store.Store
	Pipeline *pipeline.Pipeline
	Archiver *archive.Archiver // may be nil
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// initPipeline validates configuration for mode, opens the store, builds
// every client, and assembles the Pipeline. Callers should defer env.Close().
func initPipeline(ctx context.Context, mode string) (*pipelineEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	env := &pipelineEnv{Store: st}

	if n, err := st.DeleteExpiredResearch(ctx); err != nil {
		zap.L().Warn("prune research cache failed", zap.Error(err))
	} else if n > 0 {
		zap.L().Info("pruned expired research", zap.Int("entries", n))
	}

	completer, err := initCompleter(ctx)
	if err != nil {
		env.Close()
		return nil, err
	}
	retry := retryConfig()

	profile, err := outreach.LoadProfile(cfg.Outreach.ProfilePath)
	if err != nil {
		env.Close()
		return nil, err
	}

	stage := research.New(completer,
		research.WithRetry(retry),
		research.WithCache(store.NewResearchCache(st, cfg.Store.CacheTTL())),
	)
	generator := outreach.NewGenerator(completer, profile, retry)

	var sender pipeline.Sender
	if !cfg.Outreach.DryRun {
		acs, err := acsemail.NewClient(acsemail.Config{ConnectionString: cfg.Email.ConnectionString})
		if err != nil {
			env.Close()
			return nil, eris.Wrap(err, "init email client")
		}
		sender = outreach.NewSender(outreach.NewACSDelivery(acs), cfg.Email.Sender, retry)
	}

	opts := []pipeline.Option{pipeline.WithDryRun(cfg.Outreach.DryRun)}

	if cfg.SerpAPI.Key != "" {
		var serpOpts []serpapi.Option
		if cfg.SerpAPI.BaseURL != "" {
			serpOpts = append(serpOpts, serpapi.WithBaseURL(cfg.SerpAPI.BaseURL))
		}
		if cfg.SerpAPI.RateLimit > 0 {
			serpOpts = append(serpOpts, serpapi.WithRateLimit(cfg.SerpAPI.RateLimit, 1))
		}
		searcher := discovery.NewSerpSearcher(serpapi.NewClient(cfg.SerpAPI.Key, serpOpts...), retry)
		opts = append(opts, pipeline.WithDiscoverer(discovery.New(searcher)))
	}

	if cfg.Salesforce.Enabled() {
		sf, err := initSalesforce()
		if err != nil {
			env.Close()
			return nil, err
		}
		opts = append(opts, pipeline.WithSink(crm.New(sf, cfg.Salesforce.LeadSource)))
	}

	if cfg.Archive.Enabled() {
		arch, err := archive.New(cfg.Archive.ConnectionString, cfg.Archive.Container, cfg.Archive.Prefix)
		if err != nil {
			env.Close()
			return nil, err
		}
		if err := arch.EnsureContainer(ctx); err != nil {
			env.Close()
			return nil, err
		}
		env.Archiver = arch
	}

	env.Pipeline = pipeline.New(stage, generator, sender, opts...)

	zap.L().Info("pipeline initialized",
		zap.String("mode", mode),
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.Bool("dry_run", cfg.Outreach.DryRun),
		zap.Bool("crm_sync", cfg.Salesforce.Enabled()),
		zap.Bool("archive", env.Archiver != nil),
	)

	return env, nil
}

// initStore opens the configured store and applies migrations.
func initStore(ctx context.Context) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch cfg.Store.Driver {
	case config.DriverSQLite:
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "prospect.db"
		}
		st, err = store.NewSQLite(dsn)
	case config.DriverPostgres:
		st, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// initCompleter builds the reasoning client for the configured provider.
func initCompleter(ctx context.Context) (llm.Completer, error) {
	switch cfg.LLM.Provider {
	case config.ProviderAnthropic:
		var opts []anthropicpkg.Option
		if cfg.LLM.Anthropic.BaseURL != "" {
			opts = append(opts, anthropicpkg.WithBaseURL(cfg.LLM.Anthropic.BaseURL))
		}
		client := anthropicpkg.NewClient(cfg.LLM.Anthropic.Key, opts...)
		return llm.NewAnthropic(client, cfg.LLM.Anthropic.Model), nil
	case config.ProviderGemini:
		client, err := gemini.NewClient(ctx, gemini.Config{
			APIKey:  cfg.LLM.Gemini.Key,
			BaseURL: cfg.LLM.Gemini.BaseURL,
		})
		if err != nil {
			return nil, eris.Wrap(err, "init gemini client")
		}
		return llm.NewGemini(client, cfg.LLM.Gemini.Model), nil
	default:
		return nil, eris.Errorf("unsupported llm provider: %s", cfg.LLM.Provider)
	}
}

func retryConfig() resilience.RetryConfig {
	r := cfg.Retry
	return resilience.FromRetryConfig(r.MaxAttempts, r.InitialBackoffMs, r.MaxBackoffMs, r.Multiplier, r.JitterFraction)
}

func initSalesforce() (sfpkg.Client, error) {
	pemData, err := os.ReadFile(cfg.Salesforce.KeyPath)
	if err != nil {
		return nil, eris.Wrap(err, "read salesforce JWT private key")
	}

	var opts []sfpkg.ClientOption
	if cfg.Salesforce.RateLimit > 0 {
		opts = append(opts, sfpkg.WithRateLimit(cfg.Salesforce.RateLimit))
	}

	sf, err := sfpkg.Connect(sfpkg.Creds{
		LoginURL:   cfg.Salesforce.LoginURL,
		Username:   cfg.Salesforce.Username,
		ClientID:   cfg.Salesforce.ClientID,
		PrivateKey: string(pemData),
	}, opts...)
	if err != nil {
		return nil, eris.Wrap(err, "init salesforce")
	}
	return sf, nil
}
