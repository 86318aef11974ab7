// Package auth implements the client-resident session engine for the
// knowledge-article revision workflow: durable bearer-token storage, token
// decoding and validity checks, an authentication state machine, a periodic
// session monitor, and the role/permission predicates consumed by route
// guards.
//
// Typical wiring:
//
//	store := auth.NewBunTokenStore(db)
//	gateway := auth.NewHTTPGateway(auth.GatewayConfig{BaseURL: "https://api.example.com"})
//	manager := auth.NewSessionManager(store, gateway)
//	monitor := auth.NewMonitor(manager, store)
//
//	manager.Initialize(ctx)
//	monitor.Start(ctx)
//
// The package never verifies token signatures. The issuing backend is the
// trust boundary; tokens are decoded only to read expiry and identity claims.
// Local storage is treated as untrusted and externally mutable: every read
// validates shape before the value is used, and corrupted records are purged
// rather than surfaced.
package auth
