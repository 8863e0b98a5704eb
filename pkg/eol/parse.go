package eol

import "strings"

// ParseVersion extracts the normalized release cycle from a vendor-specific
// Azure image SKU. The second return value is false when no cycle can be
// inferred; parsing never fails hard.
func ParseVersion(family OSFamily, sku string) (string, bool) {
	switch family {
	case FamilyUbuntu:
		return parseUbuntuSKU(sku)
	case FamilyCentOS, FamilyRHEL, FamilyWindows:
		return parseMajorSKU(sku)
	default:
		return "", false
	}
}

// parseUbuntuSKU handles SKUs like "18.04-LTS" and "20_04-lts-gen2".
// The first dash-separated segment is the release; a single underscore in
// it stands in for the dot ("20_04" -> "20.04").
func parseUbuntuSKU(sku string) (string, bool) {
	if sku == "" {
		return "", false
	}
	first := strings.Split(sku, "-")[0]
	if parts := strings.Split(first, "_"); len(parts) == 2 {
		return parts[0] + "." + parts[1], true
	}
	return first, true
}

// parseMajorSKU handles SKUs like "7.6", "7.6.3.4" and "7-LVM".
// Only the major version is kept; the EOL calendars for these vendors key
// on the major release cycle.
func parseMajorSKU(sku string) (string, bool) {
	if sku == "" {
		return "", false
	}
	if parts := strings.Split(sku, "."); len(parts) >= 2 {
		return parts[0], true
	}
	return strings.Split(sku, "-")[0], true
}
