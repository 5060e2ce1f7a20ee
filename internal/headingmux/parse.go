package headingmux

import (
	"fmt"
	"strconv"
	"strings"
)

// headingPrefix marks a heading sentence from the compass module. The rest of
// the line is the heading in degrees, e.g. "HDG,247.5".
const headingPrefix = "HDG,"

// ParseHeadingLine extracts a compass heading from one serial line. Lines
// without the heading prefix (boot banners, checksum chatter) return ok=false
// with no error; a malformed heading value is an error.
func ParseHeadingLine(line string) (float64, bool, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, headingPrefix) {
		return 0, false, nil
	}

	raw := strings.TrimPrefix(line, headingPrefix)
	deg, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, fmt.Errorf("malformed heading line %q: %w", line, err)
	}
	if deg < 0 || deg >= 360 {
		return 0, false, fmt.Errorf("heading %v out of range [0,360)", deg)
	}
	return deg, true, nil
}
