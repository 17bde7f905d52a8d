// Package api exposes the registry's state machines over HTTP with Fiber,
// the way the teacher project's api package fronts its own domain
// services: thin handlers that decode a request, call straight into the
// relevant store, and translate the result (or regerr sentinel) into a
// response.
package api

import (
	"github.com/LTPPPP/did-trust-registry/did"
	"github.com/LTPPPP/did-trust-registry/docref"
	"github.com/LTPPPP/did-trust-registry/offchainsig"
	"github.com/LTPPPP/did-trust-registry/trustregistry"
)

// Deps bundles the handlers' dependencies. One Deps is built at startup
// and shared across every request; every field is itself safe for
// concurrent use.
type Deps struct {
	DIDs            *did.Registry
	OffchainSigs    *offchainsig.Store
	TrustRegistries *trustregistry.Store
	DocRefs         *docref.Resolver
}
