// Package backend is the authenticated REST layer in front of the record
// service.
//
// Client performs single requests and maps connectivity failures to
// common.ErrTransport. AuthSession owns the admin credential: it logs in once
// at startup, refreshes the token on a fixed interval and hands the current
// value to every Client created with WithTokens.
//
//	raw := backend.NewClient(cfg.BaseURL, cfg.RequestTimeout, log)
//	auth := backend.NewAuthSession(raw, backend.AuthConfig{...}, log)
//	if err := auth.Initialize(ctx); err != nil { ... }
//	api := raw.WithTokens(auth)
//	go auth.Run(ctx)
package backend
