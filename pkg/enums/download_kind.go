package enums

import "fmt"

// DownloadKind is the ?type= parameter of the download endpoint. Single-file
// kinds stream one audio file; bundle kinds stream a zip built on demand.
type DownloadKind string

const (
	DownloadKindMP3       DownloadKind = "mp3"
	DownloadKindWAV       DownloadKind = "wav"
	DownloadKindStems     DownloadKind = "stems"
	DownloadKindExclusive DownloadKind = "exclusive"
	DownloadKindUnlimited DownloadKind = "unlimited"
)

var validDownloadKinds = []DownloadKind{
	DownloadKindMP3,
	DownloadKindWAV,
	DownloadKindStems,
	DownloadKindExclusive,
	DownloadKindUnlimited,
}

// String implements fmt.Stringer.
func (d DownloadKind) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DownloadKind.
func (d DownloadKind) IsValid() bool {
	for _, candidate := range validDownloadKinds {
		if candidate == d {
			return true
		}
	}
	return false
}

// IsBundle reports whether the kind is delivered as a zip archive.
func (d DownloadKind) IsBundle() bool {
	switch d {
	case DownloadKindStems, DownloadKindExclusive, DownloadKindUnlimited:
		return true
	}
	return false
}

// ParseDownloadKind converts raw input into a DownloadKind.
func ParseDownloadKind(value string) (DownloadKind, error) {
	for _, candidate := range validDownloadKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid download kind %q", value)
}
