// Package credkit is the credential and token security engine behind a
// user-management service: it converts raw passwords into durable secure
// hashes, verifies presented passwords against stored records, detects
// weak and breached passwords, checks password-reuse history, and issues,
// validates, refreshes, and revokes JWT access and refresh tokens.
//
// The package is the public surface. Engines are assembled through
// [Builder.Build] from an immutable [Config] plus optional collaborators
// (breach checker, verification cache, revocation store, encryptor, audit
// sink) and are safe for concurrent use after construction.
//
// # Architecture boundaries
//
// credkit never persists state: it produces and consumes credential
// records, history lists, and revocation ids that the caller's storage
// layer owns. No engine method performs I/O on its own except through an
// injected collaborator (the Redis revocation store, a breach range
// client). The HTTP/API layer and the workflow runtime that drive these
// operations live outside this module.
//
// # Failure semantics
//
// Every failure is a returned value, never a process failure: input errors
// (empty password), policy rejections (breached or reused password), the
// individually distinguishable token-validity errors, and construction-time
// configuration errors that prevent the engine from serving at all.
package credkit
