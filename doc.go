// Package session provides the client-side session core for the tiffin
// marketplace: it owns the authenticated user, consumes the bearer credential
// issued by the credential store, drives role-based navigation and reconciles
// partial profile edits against server responses.
//
// Session lifecycle:
//   - A Controller starts in the loading status. Call Bootstrap once at startup
//     to restore a session from the persisted token. Bootstrap never fails and
//     never navigates.
//   - Login and Signup persist the issued token, publish the returned user and
//     hand the user to the RoleRouter: chefs land on the kitchen surface, every
//     other role on the landing surface.
//   - Logout discards the token and always succeeds from the caller's point of
//     view.
//
// Profile reconciliation:
//   - UpdateUser sends a UserPatch to the credential store and merges the
//     (possibly partial) response with Reconcile. Each field resolves to the
//     server value, else the patch value, else the previous session value.
//   - A rejected update leaves the session untouched, the published User is the
//     same pointer as before the call.
//
// Users are a tagged variant: the User interface is implemented by *Customer,
// *Chef and *Admin, each embedding the shared Account record.
//
// Errors are go-errors rich errors; use the Is* predicates to classify them and
// Message to obtain a non-empty, user-facing message.
package session
