package cmd

import (
	"context"

	"github.com/iksnae/openup-cli/internal"
	"github.com/iksnae/openup-cli/internal/session"
)

// app bundles the collaborators every command needs
type app struct {
	cfg    *internal.Config
	client *internal.Client
	store  internal.IdentityStore
	cache  *internal.ResultCache
	close  func() error
}

func loadApp() (*app, error) {
	cfg, err := internal.LoadConfig(internal.Overrides{
		APIURL:       apiURL,
		StateDir:     stateDir,
		StoreBackend: storeBackend,
	})
	if err != nil {
		return nil, err
	}

	store, closeStore, err := internal.NewIdentityStore(cfg)
	if err != nil {
		return nil, err
	}

	internal.LogDebug("Using backend %s, state dir %s, store %s", cfg.APIURL, cfg.StateDir, cfg.StoreBackend)
	return &app{
		cfg:    cfg,
		client: internal.NewClientFromConfig(cfg),
		store:  store,
		cache:  internal.NewResultCache(cfg.Paths().CacheDir),
		close:  closeStore,
	}, nil
}

// controller builds a session controller wired to the result cache
func (a *app) controller(ctx context.Context, opts ...session.Option) *session.Controller {
	opts = append([]session.Option{
		session.WithTopK(a.cfg.TopK),
		session.WithObserver(session.NewCacheObserver(a.cache)),
	}, opts...)
	return session.NewController(ctx, a.client, a.store, opts...)
}

// signedIn boots a controller and fails when no identity is saved
func (a *app) signedIn(ctx context.Context, opts ...session.Option) (*session.Controller, error) {
	ctrl := a.controller(ctx, opts...)
	// The boot-time graph refresh is skipped; commands fetch what they need.
	_ = ctrl.Boot()
	if ctrl.Identity() == nil {
		return nil, errNotSignedIn
	}
	return ctrl, nil
}
