package decoder

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

// Payload encodings accepted by ParsePayload.
const (
	EncodingBase64 = "base64"
	EncodingHex    = "hex"
	EncodingBase58 = "base58"
)

// ParsePayload turns encoded instruction data into bytes. An empty encoding
// means base64; hex input may carry a 0x prefix.
func ParsePayload(data, encoding string) ([]byte, error) {
	data = strings.TrimSpace(data)
	switch strings.ToLower(encoding) {
	case "", EncodingBase64:
		return base64.StdEncoding.DecodeString(data)
	case EncodingHex:
		return hex.DecodeString(strings.TrimPrefix(data, "0x"))
	case EncodingBase58:
		return base58.Decode(data)
	default:
		return nil, fmt.Errorf("unsupported encoding %q", encoding)
	}
}
