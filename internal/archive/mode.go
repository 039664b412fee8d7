package archive

import (
	"fmt"
	"strings"
)

// Mode selects how a run treats network traffic. It is resolved once
// at startup; nothing switches modes mid-run.
type Mode string

const (
	// ModeLive passes traffic straight through to the real service.
	ModeLive Mode = "live"

	// ModeRecord passes traffic through and captures every exchange
	// into the archive.
	ModeRecord Mode = "record"

	// ModeReplay serves responses from the archive. Requests with no
	// recorded exchange fall through to the network.
	ModeReplay Mode = "replay"
)

// ParseMode converts a config string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeLive, ModeRecord, ModeReplay:
		return m, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want live, record, or replay)", s)
	}
}

// String returns the mode name.
func (m Mode) String() string { return string(m) }
