// Package store provides credential persistence backends for
// parkgate.PersistentCredentialStore: Redis for the multi-process admin
// console, bbolt for the single-device companion app and CLI. Backends return
// errors; the wrapping store in the root package absorbs them into the
// no-fail CredentialStore contract.
package store
