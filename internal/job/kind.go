package job

import (
	"errors"
	"fmt"
	"strings"

	"svgcam/internal/offset"
)

var ErrUnknownKind = errors.New("job: unknown operation kind")

// Kind is the machining strategy applied to one contour.
type Kind int

const (
	ProfileInside Kind = iota
	ProfileOutside
	PocketInside
	PocketOutside
	Engraving
)

var kindNames = [...]string{
	ProfileInside:  "profile_inside",
	ProfileOutside: "profile_outside",
	PocketInside:   "pocket_inside",
	PocketOutside:  "pocket_outside",
	Engraving:      "engraving",
}

func (k Kind) String() string {
	if k.Valid() {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

func (k Kind) Valid() bool {
	return k >= ProfileInside && k <= Engraving
}

// IsProfile reports whether k cuts along the outline and carries tabs.
func (k Kind) IsProfile() bool {
	return k == ProfileInside || k == ProfileOutside
}

func (k Kind) IsPocket() bool {
	return k == PocketInside || k == PocketOutside
}

// Side is the side of the outline tool compensation moves the cutter to.
func (k Kind) Side() offset.Direction {
	if k == ProfileInside || k == PocketInside {
		return offset.Inside
	}
	return offset.Outside
}

// ParseKind accepts the snake_case names, with dashes or spaces allowed in
// place of underscores.
func ParseKind(s string) (Kind, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	for k, name := range kindNames {
		if name == norm {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}
