package enums

import (
	"fmt"
	"strings"
)

// LicenseTier maps to the license_tier enum in Postgres. Each beat carries an
// independent price per tier; the stems tier transfers exclusivity.
type LicenseTier string

const (
	LicenseTierMP3   LicenseTier = "mp3"
	LicenseTierWAV   LicenseTier = "wav"
	LicenseTierStems LicenseTier = "stems"
)

var validLicenseTiers = []LicenseTier{
	LicenseTierMP3,
	LicenseTierWAV,
	LicenseTierStems,
}

// String implements fmt.Stringer.
func (l LicenseTier) String() string {
	return string(l)
}

// IsValid reports whether the value matches the canonical license_tier enum.
func (l LicenseTier) IsValid() bool {
	for _, candidate := range validLicenseTiers {
		if candidate == l {
			return true
		}
	}
	return false
}

// IsExclusive reports whether a completed purchase of this tier retires the
// beat from the catalog. Legacy storefront naming used "exclusive" and
// "unlimited" for the same tier, so those spellings are honored too.
func (l LicenseTier) IsExclusive() bool {
	switch strings.ToLower(string(l)) {
	case string(LicenseTierStems), "exclusive", "unlimited":
		return true
	}
	return false
}

// Label returns the customer-facing license name.
func (l LicenseTier) Label() string {
	switch l {
	case LicenseTierMP3:
		return "MP3 License"
	case LicenseTierWAV:
		return "WAV License"
	case LicenseTierStems:
		return "Stems License (Exclusive)"
	}
	return "License"
}

// ParseLicenseTier converts raw input into LicenseTier.
func ParseLicenseTier(value string) (LicenseTier, error) {
	for _, candidate := range validLicenseTiers {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid license tier %q", value)
}
