// Package scrypthash implements adaptive scrypt password hashing with a
// portable, self-describing binary record format.
//
// # Architecture
//
// Two cooperating pieces:
//
//   - The parameter selector ([PickParams], [Calibrate]) turns a memory
//     budget, a time budget, and the current machine's capability (total
//     physical memory, measured KDF throughput) into the strongest scrypt
//     parameter triple (N, r, p) that fits both budgets.
//   - The record codec and verifier ([Hasher]) derives 64 bytes of key
//     material with scrypt and packs parameters, salt, a header checksum,
//     and an HMAC-SHA256 signature into a fixed 96-byte record; the reverse
//     path parses a record, re-derives the key, and compares tags.
//
// Because every record carries its own parameters, verification needs no
// configuration: a record hashed on one machine verifies on any other.
//
// # Quick start
//
//	encoded, err := scrypthash.Hash("my-secret-password")
//	if err != nil { log.Fatal(err) }
//
//	ok, err := scrypthash.Check("my-secret-password", encoded) // true
//
// Or with explicit configuration:
//
//	h, err := scrypthash.NewHasher(scrypthash.Options{
//	    MemFraction: 0.25,
//	    MaxTime:     500 * time.Millisecond,
//	})
//	encoded, _ := h.Make("my-secret-password")
//
// # Record format
//
// A record is exactly 96 bytes:
//
//	[ 0, 7)  "scrypt" tag + NUL
//	[ 7, 8)  cost exponent log2(N)
//	[ 8,12)  block factor r (big-endian)
//	[12,16)  parallelization factor p (big-endian)
//	[16,48)  salt
//	[48,64)  SHA-256 header checksum, truncated to 16 bytes
//	[64,96)  HMAC-SHA256 signature keyed by the derived key
//
// The string API transports records as standard base64. The two validation
// phases are ordered for cost: the cheap header checksum rejects corrupt or
// foreign records before any memory-hard derivation is attempted, and only
// then is the signature checked with a freshly derived key.
//
// # Security
//
//   - Parameters are calibrated on every hash (never cached), so cost
//     tracks the machine the hash runs on. The defaults budget 10% of
//     physical memory and one second of CPU time.
//   - A hash is never weaker than 1 MiB of memory and 2^15 salsa20/8 core
//     invocations, no matter how small the budgets.
//   - Tag comparisons are constant time.
//   - Verification reports a wrong password, a wrong-parameter derivation
//     failure, and a signature mismatch identically as a plain false.
package scrypthash
