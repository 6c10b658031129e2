package postlogin

import (
	"fmt"
	"strings"
)

const handlePrefix = "VPB"

// BuildHandle derives the internal username for a session from the
// business unit and customer id. The same inputs always produce the
// same handle; downstream systems key on it.
func BuildHandle(businessUnit, cif string) (string, error) {
	bu := strings.ToUpper(strings.TrimSpace(businessUnit))
	cif = strings.TrimSpace(cif)
	if bu == "" || cif == "" {
		return "", ErrInvalidIdentity
	}
	return fmt.Sprintf("%s-%s-%s", handlePrefix, bu, cif), nil
}
