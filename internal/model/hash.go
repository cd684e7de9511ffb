package model

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/text/unicode/norm"
)

// documentDomain is the domain-separation prefix for document identity
// hashes, versioned so a future serialization change cannot collide with
// IDs computed today.
const documentDomain = "qprov:document:v1|"

// DocumentID computes the content-addressed identity of a serialized
// document: SHA-256 over the NFC-normalized bytes, hex encoded. Unicode
// normalization keeps visually identical documents (differing only in
// composed vs decomposed provider strings) mapped to one identity.
func DocumentID(doc []byte) string {
	h := sha256.New()
	h.Write([]byte(documentDomain))
	h.Write(norm.NFC.Bytes(doc))
	return hex.EncodeToString(h.Sum(nil))
}
