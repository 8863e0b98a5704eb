package eol

import "strings"

// OSFamily identifies the vendor family an Azure image belongs to.
// It is selected once per VM record and drives version parsing,
// calendar lookup and classification.
type OSFamily int

const (
	FamilyUnknown OSFamily = iota
	FamilyUbuntu
	FamilyCentOS
	FamilyRHEL
	FamilyWindows
)

// String returns the human-readable family name.
func (f OSFamily) String() string {
	switch f {
	case FamilyUbuntu:
		return "Ubuntu"
	case FamilyCentOS:
		return "CentOS"
	case FamilyRHEL:
		return "RHEL"
	case FamilyWindows:
		return "Windows"
	default:
		return "Unknown"
	}
}

// Product returns the endoflife.date product name for the family,
// or an empty string when no calendar exists for it.
func (f OSFamily) Product() string {
	switch f {
	case FamilyUbuntu:
		return "ubuntu"
	case FamilyCentOS:
		return "centos"
	case FamilyRHEL:
		return "redhat"
	case FamilyWindows:
		return "windows"
	default:
		return ""
	}
}

// hasLookahead reports whether the family's classification flags releases
// whose EOL date falls inside the lookahead window as ending soon.
// Windows calendars key on coarse product cycles, so only the bare
// before/after comparison is applied there.
func (f OSFamily) hasLookahead() bool {
	switch f {
	case FamilyUbuntu, FamilyCentOS, FamilyRHEL:
		return true
	default:
		return false
	}
}

// familyKeywords is checked in priority order; the first keyword found in
// the offer or publisher wins.
var familyKeywords = []struct {
	keyword string
	family  OSFamily
}{
	{"ubuntu", FamilyUbuntu},
	{"centos", FamilyCentOS},
	{"rhel", FamilyRHEL},
	{"windows", FamilyWindows},
}

// DetectFamily classifies a VM image by case-insensitive substring match
// on its offer and publisher.
func DetectFamily(publisher, offer string) OSFamily {
	offer = strings.ToLower(offer)
	publisher = strings.ToLower(publisher)
	for _, m := range familyKeywords {
		if strings.Contains(offer, m.keyword) || strings.Contains(publisher, m.keyword) {
			return m.family
		}
	}
	return FamilyUnknown
}

// Products returns the endoflife.date product names for every family with
// a calendar, in detection priority order.
func Products() []string {
	products := make([]string, 0, len(familyKeywords))
	for _, m := range familyKeywords {
		products = append(products, m.family.Product())
	}
	return products
}
