// Package samples implements the two servers an Authlete-backed
// authorization service talks to: the authentication callback server and a
// resource server protected by token introspection.
//
// Server holds the business logic and its injected collaborators. Handler
// adapts it to HTTP and exposes chi routes:
//
//	srv, _ := samples.NewServer(cfg, localProvider, logger)
//	srv.Social[authlete.SNSFacebook] = facebookProvider
//	srv.Introspector = authleteClient
//
//	h := samples.NewHandler(srv, logger)
//	r := chi.NewRouter()
//	h.AuthenticationRoutes(r) // POST /authentication
//	h.ResourceRoutes(r)       // GET /me, GET /saying
package samples
