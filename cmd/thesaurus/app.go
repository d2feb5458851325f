package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MarcoMadridG27/Thesaurus/internal/auth"
	"github.com/MarcoMadridG27/Thesaurus/internal/common"
	"github.com/MarcoMadridG27/Thesaurus/internal/config"
	"github.com/MarcoMadridG27/Thesaurus/internal/insights"
	"github.com/MarcoMadridG27/Thesaurus/internal/model"
	"github.com/MarcoMadridG27/Thesaurus/internal/storage"
	"github.com/MarcoMadridG27/Thesaurus/internal/store"
)

// app holds the collaborators one command invocation works with.
type app struct {
	cfg      *config.Config
	kv       *storage.SQLiteStorage
	tokens   *auth.TokenStore
	http     *http.Client
	insights *insights.Client
	store    *store.Store
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}

	kv, err := storage.Open(cmd.Context(), cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	return &app{
		cfg:    cfg,
		kv:     kv,
		tokens: auth.NewTokenStore(kv),
		http:   &http.Client{Timeout: cfg.Services.Timeout},
	}, nil
}

// close waits for background analyses and releases every collaborator.
func (a *app) close() {
	if a.store != nil {
		a.store.Wait()
	}
	if a.insights != nil {
		a.insights.Close()
	}
	if err := a.kv.Close(); err != nil {
		slog.Warn("Failed to close storage", "error", err)
	}
}

// requireToken fails unless a signed-in, unexpired session exists.
func (a *app) requireToken(ctx context.Context) (*model.Token, error) {
	token, err := a.tokens.Require(ctx, time.Now())
	switch {
	case errors.Is(err, common.ErrNotAuthenticated):
		return nil, common.NewUserError("sign in first with `thesaurus auth login`", err)
	case errors.Is(err, common.ErrTokenExpired):
		return nil, common.NewUserError("your session expired, sign in again with `thesaurus auth login`", err)
	case err != nil:
		return nil, err
	}
	return token, nil
}

func (a *app) authClient() (*auth.Client, error) {
	base, err := a.cfg.Services.Login()
	if err != nil {
		return nil, err
	}
	return auth.NewClient(base, a.http), nil
}

func (a *app) insightsClient() (*insights.Client, error) {
	if a.insights != nil {
		return a.insights, nil
	}
	base, err := a.cfg.Services.Insights()
	if err != nil {
		return nil, err
	}
	a.insights = insights.NewClient(base, a.http,
		insights.WithRequestsPerMinute(a.cfg.Insights.RequestsPerMinute),
	)
	return a.insights, nil
}

// openStore loads the invoice collection. Commands that only read pass
// analyzeOnLoad=false so opening the store does not call the service.
func (a *app) openStore(ctx context.Context, analyzeOnLoad bool) (*store.Store, error) {
	var analyzer store.Analyzer
	if client, err := a.insightsClient(); err == nil {
		analyzer = client
	} else {
		slog.Debug("Insights service not configured, analyses disabled", "error", err)
		analyzer = unavailableAnalyzer{err: err}
	}

	s, err := store.New(ctx, a.kv, analyzer,
		store.WithPeriod(a.cfg.Insights.Period),
		store.WithLoadAnalysis(analyzeOnLoad),
	)
	if err != nil {
		return nil, err
	}
	a.store = s
	return s, nil
}

// unavailableAnalyzer stands in when the insights service is not configured.
type unavailableAnalyzer struct {
	err error
}

func (u unavailableAnalyzer) AnalyzeInvoices(context.Context, []model.Invoice, string) (*model.Analysis, error) {
	return nil, u.err
}

// withApp runs fn with an app, closing it afterwards. Dashboard commands set
// authenticated so they refuse to run without a valid session.
func withApp(authenticated bool, fn func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		if authenticated {
			if _, err := a.requireToken(cmd.Context()); err != nil {
				return err
			}
		}
		return fn(cmd, a, args)
	}
}
