// Package session keeps the operator's login between CLI invocations.
//
// # Overview
//
// LocalStorage is a small key/value table in a SQLite file under the user's
// config directory. It holds two keys: the access token and the JSON user
// profile returned by login.
//
// Provider is the only owner of that pair. It reads the token from storage
// on every call so a logout in another terminal takes effect immediately.
//
// # Expiry
//
// When the API rejects the token, the api client calls Provider.Expire. The
// provider publishes a single EventSessionError to every subscriber and
// then stays quiet until the next Save. Subscribers show the "session
// expired" notice and call Clear.
//
// # Gate
//
// Gate.Require turns the stored pair into a Session or ErrNoSession. The
// session's Layout tells the CLI whether to offer mutating commands.
package session
