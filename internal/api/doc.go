// Package api is the REST client for the antecedentes backend.
//
// # Overview
//
// Client holds the base URL, the HTTP client and a TokenSource. Every
// authenticated request reads the token fresh and sends it as a bearer
// token. Entity operations hang off the client as small services:
//
//	c := api.NewClient(cfg.API.BaseURL, provider,
//	    api.WithUnauthorizedHandler(provider.Expire))
//	people, err := c.Persons.Search(ctx, criteria.Values())
//
// # Errors
//
// Non-2xx responses become *Error carrying the status, a message from the
// status table and the server's detail text. Transport failures wrap
// ErrConnection. Use IsNotFound, IsDuplicate and friends to branch.
//
// A 401 on any authenticated call invokes the unauthorized handler; a 401
// from Login does not, since it just means bad credentials.
//
// List and search endpoints answer 404 when nothing matches. Those calls
// return an empty slice and a nil error.
package api
