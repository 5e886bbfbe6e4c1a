package internal

import "time"

// VendorKey identifies one supplier's raw data source. Keys double as
// staging directory names, so they stay lowercase.
type VendorKey string

const (
	VendorBBEnergy VendorKey = "bbenergy"
	VendorBigWest  VendorKey = "bigwest"
	VendorBradHall VendorKey = "bradhall"
	VendorChevron  VendorKey = "chevron"
	VendorKotaco   VendorKey = "kotaco"
	VendorMarathon VendorKey = "marathon"
	VendorMusket   VendorKey = "musket"
	VendorOffen    VendorKey = "offen"
	VendorOPIS     VendorKey = "opis"
	VendorRebel    VendorKey = "rebel"
	VendorShell    VendorKey = "shell"
	VendorSinclair VendorKey = "sinclair"
	VendorSunoco   VendorKey = "sunoco"
	VendorTartan   VendorKey = "tartan"
	VendorValero   VendorKey = "valero"
)

// AllVendors lists every supported vendor in staging order.
var AllVendors = []VendorKey{
	VendorBBEnergy, VendorBigWest, VendorBradHall, VendorChevron,
	VendorKotaco, VendorMarathon, VendorMusket, VendorOffen,
	VendorOPIS, VendorRebel, VendorShell, VendorSinclair,
	VendorSunoco, VendorTartan, VendorValero,
}

// PriceRow is one normalized price quote. Date and Time are the
// canonical decomposition of Datetime: Datetime is always recomposed
// from the rendered Date and Time strings, never kept from raw input.
// Pointer fields are null when the raw value was missing or
// unparseable; normalizers degrade to null instead of failing a batch.
type PriceRow struct {
	Supplier string
	Location string
	Terminal string
	Product  *string
	Brand    string
	Price    *float64
	Datetime *time.Time
	Date     string
	Time     string
	Change   *float64
}

// CrossRefEntry maps a vendor-native (supplier, product description,
// old terminal) triple to normalized business codes.
type CrossRefEntry struct {
	Supplier           string
	ProductDescription string
	TerminalOld        string
	SupplyArea         string
	ProductCode        string
	TerminalNew        string
	ProductGroup       string
	AlternateAccount   string
}

// EnrichedPriceRow is a PriceRow left-joined against the
// cross-reference table. Enrichment fields stay nil on no match.
type EnrichedPriceRow struct {
	PriceRow
	SupplyArea       *string
	ProductCode      *string
	TerminalNew      *string
	ProductGroup     *string
	AlternateAccount *string
}

type EmailRow struct {
	ID         int
	Provider   string
	MessageID  string
	Subject    string
	Sender     string
	ReceivedAt string
	Hash       string
	Status     string
	RawRef     string
}

type FetchedMailMessage struct {
	Provider   string
	MessageID  string
	Subject    string
	From       string
	ReceivedAt string
	Raw        []byte
}
