// Package server is the development REST backend for the antecedentes tools.
//
// # Overview
//
// Server wires a store.Store to a gin engine and serves the same HTTP
// contract as the production API, so the client can be run and tested
// end to end without it:
//
//	srv, err := server.New(cfg, st, logger)
//	if err != nil {
//	    return err
//	}
//	return srv.Run(ctx)
//
// Tests mount srv.Handler() on httptest.NewServer.
//
// # Authorization
//
// POST /login and GET /health are public. Everything else needs a bearer
// token issued by /login. VIEW users may only read; mutations answer 403.
// /users requires ADMIN.
//
// # Conventions
//
// Errors are JSON {"detail": "..."}. Duplicates answer 422. Searches with
// no matches answer 404, which the client reads as an empty result.
package server
