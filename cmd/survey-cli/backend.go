package main

import (
	"context"

	"homesurvey/internal/common/config"
	"homesurvey/internal/common/logger"
	"homesurvey/internal/envelope"
	"homesurvey/internal/scanapi"
	"homesurvey/internal/session"
)

// backend bundles what the commands that touch storage or the scan API need.
type backend struct {
	cfg     *config.Config
	log     logger.Logger
	store   *envelope.Store
	api     *scanapi.Client
	closeFn func() error
}

func (f *rootFlags) connect(ctx context.Context) (*backend, error) {
	cfg, err := f.loadConfig()
	if err != nil {
		return nil, err
	}
	log := f.logger(cfg)

	store, closeFn, err := openStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	api := scanapi.New(cfg.API, log)
	if token := store.Token(ctx); token != "" {
		api.SetToken(token)
	}
	return &backend{cfg: cfg, log: log, store: store, api: api, closeFn: closeFn}, nil
}

func (b *backend) Close() error {
	return b.closeFn()
}

// session starts a session for the stored account.
func (b *backend) session(ctx context.Context) (*session.Session, string) {
	sess := session.New(b.store, b.log)
	sess.SetUser(ctx, b.store.CurrentUser(ctx))
	return sess, sess.UserID()
}
