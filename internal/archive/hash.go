package archive

import (
	"crypto/sha256"
	"encoding/hex"
)

// Domain prefix for content-addressed request identity.
// Version suffix enables future algorithm migration.
const domainExchange = "flowgate/exchange/v1"

// RequestHash computes the content-addressed identity of a request
// over its method, URL, and body. Null separators prevent boundary
// ambiguity between the fields.
//
// The hash is stable across runs given identical request content,
// which is what makes exact replay lookup possible; requests whose
// bodies legitimately vary (regenerated identities) fall back to the
// (method, url) index instead.
func RequestHash(method, url string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(domainExchange))
	h.Write([]byte{0x00})
	h.Write([]byte(method))
	h.Write([]byte{0x00})
	h.Write([]byte(url))
	h.Write([]byte{0x00})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}
