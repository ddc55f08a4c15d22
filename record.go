package scrypthash

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/binary"
	"fmt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Record layout
// ──────────────────────────────────────────────────────────────────────────────

const (
	// RecordLen is the exact size of a binary hash record in bytes.
	RecordLen = 96

	// SaltLen is the length of the random salt embedded in every record.
	SaltLen = 32

	// keyLen is the derived-key length requested from the KDF. The second
	// 32-byte half keys the record signature.
	keyLen = 64
)

// Byte offsets within a record. The layout is a fixed binary contract:
//
//	[ 0, 7)  tag "scrypt" + NUL terminator
//	[ 7, 8)  cost exponent (log2 N), uint8
//	[ 8,12)  block factor r, big-endian uint32
//	[12,16)  parallelization factor p, big-endian uint32
//	[16,48)  salt
//	[48,64)  header checksum: SHA-256 of bytes [0,48), truncated to 16
//	[64,96)  signature: HMAC-SHA256 of bytes [0,64), keyed by the second
//	         half of the derived key
const (
	offTag      = 0
	offLogN     = 7
	offR        = 8
	offP        = 12
	offSalt     = 16
	offChecksum = 48
	offSig      = 64

	headerLen   = 48 // covered by the checksum
	signedLen   = 64 // covered by the signature
	checksumLen = 16
	sigLen      = 32
)

var recordTag = [7]byte{'s', 'c', 'r', 'y', 'p', 't', 0}

// writeHeader fills bytes [0,48) of rec. salt must be SaltLen bytes.
func writeHeader(rec []byte, p Params, salt []byte) {
	copy(rec[offTag:], recordTag[:])
	rec[offLogN] = byte(p.LogN)
	binary.BigEndian.PutUint32(rec[offR:], p.R)
	binary.BigEndian.PutUint32(rec[offP:], p.P)
	copy(rec[offSalt:], salt)
}

// parseRecord reads the parameter fields and salt from a record. Only the
// length is validated here; whether the header can be trusted at all is the
// checksum's job, and whether the parameters are feasible is the KDF's.
func parseRecord(rec []byte) (Params, []byte, error) {
	if len(rec) < RecordLen {
		return Params{}, nil, fmt.Errorf("%w: %d bytes, need %d", ErrMalformedRecord, len(rec), RecordLen)
	}
	p := Params{
		LogN: int(rec[offLogN]),
		R:    binary.BigEndian.Uint32(rec[offR:]),
		P:    binary.BigEndian.Uint32(rec[offP:]),
	}
	return p, rec[offSalt : offSalt+SaltLen], nil
}

// writeChecksum computes the header checksum over bytes [0,48) and stores it
// at [48,64).
func writeChecksum(rec []byte) {
	sum := sha256.Sum256(rec[:headerLen])
	copy(rec[offChecksum:], sum[:checksumLen])
}

// checksumOK recomputes the header checksum and compares it against the
// stored value. A mismatch means the record is corrupt or foreign; callers
// must not proceed to the KDF.
func checksumOK(rec []byte) bool {
	sum := sha256.Sum256(rec[:headerLen])
	return subtle.ConstantTimeCompare(sum[:checksumLen], rec[offChecksum:offChecksum+checksumLen]) == 1
}

// writeSignature MACs bytes [0,64) with keyHMAC and stores the 32-byte tag
// at [64,96).
func writeSignature(rec, keyHMAC []byte) {
	mac := hmac.New(sha256.New, keyHMAC)
	mac.Write(rec[:signedLen])
	copy(rec[offSig:], mac.Sum(nil))
}

// signatureOK recomputes the record signature with keyHMAC and compares it
// against the stored tag in constant time.
func signatureOK(rec, keyHMAC []byte) bool {
	mac := hmac.New(sha256.New, keyHMAC)
	mac.Write(rec[:signedLen])
	return hmac.Equal(mac.Sum(nil), rec[offSig:offSig+sigLen])
}
