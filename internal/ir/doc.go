// Package ir provides the canonical value model used to identify
// expressions and operator definitions by content.
//
// ir imports nothing internal; every other package may import it.
//
// Key design constraints:
//   - NO float types - numbers from expression trees are encoded as
//     shortest round-trip decimal strings by the caller
//   - NO null - absent fields are omitted
//   - Canonical JSON follows RFC 8785: UTF-16 key order, NFC strings,
//     no HTML escaping
//   - Content ids are domain-separated SHA-256 digests
package ir
