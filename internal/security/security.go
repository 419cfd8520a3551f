// Package security provides the one-way hashing and random-token helpers
// that keep device and vehicle identifiers anonymous at rest.
package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
)

// Hasher derives storage-safe identifiers from raw device ids and plates.
// The configured peppers never leave the process, so stored hashes cannot
// be brute-forced from a plate list alone.
type Hasher struct {
	devicePepper  string
	vehiclePepper string
}

func NewHasher(devicePepper, vehiclePepper string) *Hasher {
	return &Hasher{
		devicePepper:  devicePepper,
		vehiclePepper: vehiclePepper,
	}
}

// HashDeviceID returns the hex sha256 of the peppered device identifier.
func (h *Hasher) HashDeviceID(deviceID string) string {
	return hashWithPepper(h.devicePepper, deviceID)
}

// HashVehicleID returns the hex sha256 of the peppered vehicle identifier.
// Callers pass the normalized plate; the raw plate is never persisted.
func (h *Hasher) HashVehicleID(vehicleID string) string {
	return hashWithPepper(h.vehiclePepper, vehicleID)
}

func hashWithPepper(pepper, value string) string {
	sum := sha256.Sum256([]byte(pepper + value))
	return hex.EncodeToString(sum[:])
}

// NewToken returns a URL-safe random token of n bytes of entropy, used for
// anonymous device tokens and vehicle QR tokens.
func NewToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
