// Package statestore provides server-side state formats for venmoauth.
//
// Instead of sealing the authentication properties into the state parameter,
// these stores keep them on the server and send Venmo a random id. Every id
// is single use: a replayed callback finds nothing and fails state
// validation before any token exchange is attempted.
//
//	client, err := statestore.OpenRedis(ctx, os.Getenv("REDIS_URL"))
//	if err != nil {
//		log.Fatal(err)
//	}
//	h, err := venmoauth.New(cfg,
//		venmoauth.WithStateDataFormat(statestore.NewRedis(client, statestore.WithTTL(10*time.Minute))),
//	)
//
// Memory is the single-process equivalent, backed by patrickmn/go-cache.
package statestore
