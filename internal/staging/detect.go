package staging

import (
	"strings"

	"github.com/jdlax00/jenkins-oil-pricing-db/internal"
)

type vendorMarker struct {
	fragment string
	vendor   internal.VendorKey
}

// vendorMarkers lists lowercase sender/subject fragments in scan
// order. Sender matches win over subject matches, and within a text
// the first listed fragment wins, so OPIS reports that mention a
// supplier by name still route to OPIS.
var vendorMarkers = []vendorMarker{
	{"opis", internal.VendorOPIS},
	{"bbenergy", internal.VendorBBEnergy},
	{"bb energy", internal.VendorBBEnergy},
	{"bigwest", internal.VendorBigWest},
	{"big west", internal.VendorBigWest},
	{"bradhall", internal.VendorBradHall},
	{"brad hall", internal.VendorBradHall},
	{"chevron", internal.VendorChevron},
	{"kotaco", internal.VendorKotaco},
	{"marathon", internal.VendorMarathon},
	{"musket", internal.VendorMusket},
	{"offen", internal.VendorOffen},
	{"rebel", internal.VendorRebel},
	{"shell", internal.VendorShell},
	{"sinclair", internal.VendorSinclair},
	{"sunoco", internal.VendorSunoco},
	{"tartan", internal.VendorTartan},
	{"valero", internal.VendorValero},
}

// DetectVendor routes a fetched email to a vendor by scanning the
// sender address first and the subject second. Unrecognized emails
// are skipped by the caller.
func DetectVendor(sender, subject string) (internal.VendorKey, bool) {
	if v, ok := scanMarkers(strings.ToLower(sender)); ok {
		return v, true
	}
	return scanMarkers(strings.ToLower(subject))
}

func scanMarkers(text string) (internal.VendorKey, bool) {
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	for _, m := range vendorMarkers {
		if strings.Contains(text, m.fragment) {
			return m.vendor, true
		}
	}
	return "", false
}
