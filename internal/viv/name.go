package viv

import (
	"encoding/hex"
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxNameLen is the maximum on-disk name length, including the
// terminating NUL.
const MaxNameLen = 255

// reservedStems are the legacy DOS device names rejected outright,
// compared case-insensitively against a name with its final extension
// stripped.
var reservedStems = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true, "COM5": true,
	"COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true, "LPT5": true,
	"LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// UTF8Validator is UTF-8 mode's acceptance test. It defaults to the
// standard library's validator; callers embedding this engine in a
// context that wants a different notion of "valid" may replace it.
var UTF8Validator func([]byte) bool = utf8.Valid

// NamePolicy controls how on-disk name bytes are interpreted.
type NamePolicy struct {
	// Hex treats on-disk bytes as opaque, escaping them as lowercase
	// Base16 and bypassing the character/reserved-name policy.
	Hex bool
	// UTF8 relaxes the character whitelist to "whatever UTF8Validator
	// accepts", still subject to length and trailing-character rules.
	UTF8 bool
}

// isAllowedChar is the default mode's character whitelist:
// [0-9 A-Z a-z . _ - <space>].
func isAllowedChar(b byte) bool {
	switch {
	case b >= '0' && b <= '9':
		return true
	case b >= 'A' && b <= 'Z':
		return true
	case b >= 'a' && b <= 'z':
		return true
	case b == '.' || b == '_' || b == '-' || b == ' ':
		return true
	default:
		return false
	}
}

// ValidateName applies the length, character, and reserved-name rules to
// raw (the name with its trailing NUL already stripped). Hex mode
// bypasses everything except the universal separator/NUL rejection.
func ValidateName(raw []byte, policy NamePolicy) error {
	if len(raw)+1 < 1 || len(raw)+1 > MaxNameLen {
		return wrapf(ErrNameInvalid, "name length %d out of [1,%d] (incl. NUL)", len(raw)+1, MaxNameLen)
	}
	for _, b := range raw {
		if b == '/' || b == '\\' || b == 0 {
			return wrapf(ErrNameInvalid, "name contains forbidden byte %#x", b)
		}
	}
	if policy.Hex {
		return nil
	}
	if len(raw) == 0 {
		return wrapf(ErrNameInvalid, "empty name")
	}
	switch raw[len(raw)-1] {
	case '.', ',', ';', ' ':
		return wrapf(ErrNameInvalid, "name ends in %q", string(raw[len(raw)-1]))
	}
	if policy.UTF8 {
		if !UTF8Validator(raw) {
			return wrapf(ErrNameInvalid, "invalid UTF-8")
		}
	} else {
		for _, b := range raw {
			if !isAllowedChar(b) {
				return wrapf(ErrNameInvalid, "disallowed byte %#x", b)
			}
		}
	}
	stem := string(raw)
	if idx := strings.LastIndexByte(stem, '.'); idx >= 0 {
		stem = stem[:idx]
	}
	if reservedStems[strings.ToUpper(stem)] {
		return wrapf(ErrNameInvalid, "reserved device name %q", stem)
	}
	return nil
}

// EncodeName turns raw on-disk name bytes into the filesystem-facing
// name, honoring hex mode.
func EncodeName(raw []byte, policy NamePolicy) string {
	if policy.Hex {
		return hex.EncodeToString(raw)
	}
	return string(raw)
}

// DecodeName is EncodeName's inverse, used when preparing encode inputs.
func DecodeName(name string, policy NamePolicy) ([]byte, error) {
	if policy.Hex {
		raw, err := hex.DecodeString(name)
		if err != nil {
			return nil, wrapf(ErrNameInvalid, "invalid hex name %q: %v", name, err)
		}
		return raw, nil
	}
	return []byte(name), nil
}

// OverwritePolicy controls what happens when an extraction target name
// already exists on disk.
type OverwritePolicy int

const (
	Overwrite OverwritePolicy = iota
	Rename
)

// AutoRename finds a free sibling of want by inserting "_N" before the
// extension, N starting at 1 and stopping at 1000. exists reports
// whether a candidate path is already taken. It returns ok=false if no
// free name was found within the limit.
func AutoRename(want string, exists func(string) bool) (name string, ok bool) {
	if !exists(want) {
		return want, true
	}
	ext := ""
	stem := want
	if idx := strings.LastIndexByte(want, '.'); idx > 0 {
		stem, ext = want[:idx], want[idx:]
	}
	for n := 1; n < 1000; n++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, n, ext)
		if !exists(candidate) {
			return candidate, true
		}
	}
	return "", false
}
