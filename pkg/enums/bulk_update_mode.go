package enums

import "fmt"

// BulkUpdateMode selects how the bulk pricing workflow mutates tiers.
type BulkUpdateMode string

const (
	BulkUpdateModeUpdateBase BulkUpdateMode = "update_base"
	BulkUpdateModeAddTier    BulkUpdateMode = "add_tier"
)

var validBulkUpdateModes = []BulkUpdateMode{
	BulkUpdateModeUpdateBase,
	BulkUpdateModeAddTier,
}

// String implements fmt.Stringer.
func (m BulkUpdateMode) String() string {
	return string(m)
}

// IsValid reports whether the value is a known BulkUpdateMode.
func (m BulkUpdateMode) IsValid() bool {
	for _, candidate := range validBulkUpdateModes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseBulkUpdateMode converts raw input into a BulkUpdateMode.
func ParseBulkUpdateMode(value string) (BulkUpdateMode, error) {
	for _, candidate := range validBulkUpdateModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid bulk update mode %q", value)
}
