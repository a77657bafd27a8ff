package domain

import "fmt"

// LinkMethod determines how resolved files are materialized in a target directory
type LinkMethod int

const (
	LinkSymlink  LinkMethod = iota // Points back into the mod library
	LinkHardlink                   // Needs target and library on one filesystem
	LinkCopy                       // Independent of the library after deploy
)

var linkMethodNames = [...]string{
	LinkSymlink:  "symlink",
	LinkHardlink: "hardlink",
	LinkCopy:     "copy",
}

func (m LinkMethod) String() string {
	if m < 0 || int(m) >= len(linkMethodNames) {
		return "unknown"
	}
	return linkMethodNames[m]
}

// ParseLinkMethod converts a configured or command-line name to a LinkMethod
func ParseLinkMethod(s string) (LinkMethod, error) {
	for m, name := range linkMethodNames {
		if s == name {
			return LinkMethod(m), nil
		}
	}
	return LinkSymlink, fmt.Errorf("%w: %q (use symlink, hardlink or copy)", ErrInvalidLinkMethod, s)
}

// MarshalText stores the method by name in config files
func (m LinkMethod) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText; empty keeps the current value
func (m *LinkMethod) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		return nil
	}
	parsed, err := ParseLinkMethod(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
