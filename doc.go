// Package venmoauth adds "Sign in with Venmo" to a net/http application.
//
// A Handler runs the OAuth 2.0 authorization-code flow against Venmo: it
// redirects the browser to Venmo's consent page, receives the callback,
// exchanges the code for an access token, loads the user's profile and turns
// it into an Identity that the host application signs in.
//
// # Quick Start
//
//	h, err := venmoauth.New(venmoauth.Config{
//	    ClientID:     os.Getenv("VENMO_CLIENT_ID"),
//	    ClientSecret: os.Getenv("VENMO_CLIENT_SECRET"),
//	    StateSecret:  os.Getenv("VENMO_STATE_SECRET"),
//	},
//	    venmoauth.WithSignIn(sessions.SignIn),
//	    venmoauth.WithLogger(log),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	r := chi.NewRouter()
//	r.Use(h.Middleware)
//	r.Get("/login", func(w http.ResponseWriter, r *http.Request) {
//	    _ = h.Challenge(w, r, venmoauth.NewProperties("/account"))
//	})
//
// Middleware serves the callback path (default /signin-venmo) and passes
// every other request through. ServeHTTP can be mounted directly instead.
//
// # Callback flow
//
// A callback moves through the stages AwaitingCode, ValidatingState,
// ExchangingToken, FetchingProfile and BuildingIdentity before it ends in
// SignedIn. Any failure stops the flow; the returned *FlowError records the
// stage and, where Venmo answered, the raw response body. Nothing is signed in
// unless every stage succeeded.
//
// The state parameter carries the Properties set at challenge time. By
// default they are sealed with AES-GCM using Config.StateSecret. The
// pkg/statestore package provides server-side, single-use alternatives
// backed by memory or Redis. A correlation cookie binds the state to the
// browser that started the flow.
//
// # Hooks
//
// A Provider can enrich or replace the identity once the profile is loaded
// (Authenticated) and take over the final response (ReturnEndpoint). Without
// a hook the handler redirects to Properties.RedirectURI, appending
// error=access_denied when sign-in did not happen.
//
// # Observability
//
// The handler logs one record per callback through the configured slog
// logger. LogExtractor adds the per-flow venmo_flow_id attribute when used
// with pkg/logger. WithObserver reports challenges and callback outcomes;
// pkg/metrics implements it with Prometheus.
package venmoauth
