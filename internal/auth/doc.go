// Package auth handles identity for both sides of the antecedentes API.
//
// # Overview
//
// On the client, ClassifyRole is the one place that turns a user profile into
// a RoleKind. The profile shapes returned by the API vary (flat role_name,
// flat role_id, nested role object), so the check is tolerant:
//
//	kind := auth.ClassifyRole(user)
//	if kind == auth.RoleKindView {
//	    // read-only layout
//	}
//
// On the development server, JWTIssuer signs HS256 access tokens whose "sub"
// claim is the user id, and Middleware validates them on every request:
//
//	router.Use(auth.Middleware(store, issuer))
//	router.POST("/persons", auth.RequireWrite(), h.createPerson)
//
// # Permissions
//
//   - ADMIN: everything, including user management
//   - MODERATE, USER: read and write persons, records, files and links
//   - VIEW: read only; mutating routes answer 403
package auth
