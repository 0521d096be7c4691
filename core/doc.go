// Package core contains the non-fungible transactor contracts, the checked
// teleport bookkeeping protocol and its transfer/mutate/combined adapters.
// Ledger, matcher and location adapters depend on this package; core must
// not depend on any storage or transport implementation.
package core
