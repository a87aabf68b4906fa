package export

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

var ErrInvalidColor = errors.New("export: invalid color")

// ParseColor resolves a CSS color as stored on a shape: #rgb, #rrggbb or a
// named color. ok is false for "none", "transparent" and the empty string,
// which paint nothing.
func ParseColor(s string) (c color.RGBA, ok bool, err error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "", "none", "transparent":
		return color.RGBA{}, false, nil
	}
	if strings.HasPrefix(s, "#") {
		c, err := parseHex(s[1:])
		if err != nil {
			return color.RGBA{}, false, fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}
		return c, true, nil
	}
	if named, found := colornames.Map[s]; found {
		return named, true, nil
	}
	return color.RGBA{}, false, fmt.Errorf("%w: %q", ErrInvalidColor, s)
}

func parseHex(h string) (color.RGBA, error) {
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return color.RGBA{}, errors.New("bad length")
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, err
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// resolvePaint maps an unparseable color to black, the initial value of
// both fill and stroke.
func resolvePaint(s string) (color.RGBA, bool) {
	c, ok, err := ParseColor(s)
	if err != nil {
		return color.RGBA{A: 0xff}, true
	}
	return c, ok
}

func hexOf(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
