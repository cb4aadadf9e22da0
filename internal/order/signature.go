package order

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// ComputeSignature derives the expected payment signature for a
// gateway callback: hex HMAC-SHA256 over "orderID|paymentID".
func ComputeSignature(secret, paymentOrderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(paymentOrderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a callback signature in constant time.
func VerifySignature(secret, paymentOrderID, paymentID, signature string) bool {
	expected := ComputeSignature(secret, paymentOrderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}
