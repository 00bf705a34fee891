// Package db is the persistence layer of a vault file.
//
// A vault is one sqlite database file (modernc.org/sqlite, accessed through
// Bun). The package knows nothing about keys: it stores the salt, the KDF
// parameters and the verification record in `vault_meta`, and opaque
// nonce/ciphertext pairs in `entries`. Encryption happens one layer up in
// package vault.
//
// Testing notes
//   - Tests open real files under t.TempDir(); the file-level behaviour
//     (existence checks, permissions, snapshots) is part of the contract.
//   - Exists never creates anything, so probing a path is side-effect free.
package db
