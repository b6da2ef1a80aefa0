package extraction

import (
	"reflect"
	"strings"
	"testing"
)

const rateConfirmation = `RATE CONFIRMATION
Load #: LD-48291
Shipper: Acme Distribution Center
Consignee: Pacific Wholesale Inc
Pickup Date: 01/15/2024
Delivery Date: 01/17/2024
Equipment Type: 53' Dry Van
Mode: FTL
Total Due: $2,450.00
Weight: 42,000 lbs
Carrier Name: FastFreight LLC`

func TestExtractLabeledDocument(t *testing.T) {
	record, notes := Extract(rateConfirmation)

	want := Record{
		ShipmentID:       "LD-48291",
		Shipper:          "Acme Distribution Center",
		Consignee:        "Pacific Wholesale Inc",
		PickupDatetime:   "01/15/2024",
		DeliveryDatetime: "01/17/2024",
		EquipmentType:    "53' Dry Van",
		Mode:             "FTL",
		Rate:             "2450.00",
		Currency:         "USD",
		Weight:           "42,000 lbs",
		CarrierName:      "FastFreight LLC",
	}
	if record != want {
		t.Fatalf("record mismatch:\n got %+v\nwant %+v", record, want)
	}

	if len(notes) < 2 {
		t.Fatalf("expected at least 2 notes, got %v", notes)
	}
	if notes[1] != "Fields found: 11/11" {
		t.Errorf("notes[1] = %q", notes[1])
	}
}

func TestExtractIsDeterministic(t *testing.T) {
	first, _ := Extract(rateConfirmation)
	second, _ := Extract(rateConfirmation)
	if first != second {
		t.Fatalf("repeat extraction diverged:\n first %+v\nsecond %+v", first, second)
	}
}

func TestExtractKeywordFallbacks(t *testing.T) {
	text := "The load will move as a full truckload on a 53' dry van trailer."

	record, _ := Extract(text)
	if record.Mode != "FTL" {
		t.Errorf("mode = %q, want FTL", record.Mode)
	}
	if record.EquipmentType != "53' Dry Van" {
		t.Errorf("equipment = %q, want 53' Dry Van", record.EquipmentType)
	}
	if record.Rate != "" {
		t.Errorf("rate = %q, want empty", record.Rate)
	}
}

func TestExtractRateFromTotalDue(t *testing.T) {
	record, _ := Extract("TOTAL DUE: $2,500.00")
	if record.Rate != "2500.00" {
		t.Errorf("rate = %q, want 2500.00", record.Rate)
	}
	if record.Currency != "USD" {
		t.Errorf("currency = %q, want USD", record.Currency)
	}
}

func TestExtractRateFallsBackToLargestAmount(t *testing.T) {
	text := "Detention $75.00 charged. Payment of $1,850.00 received. Extra $20.00 fee."

	record, _ := Extract(text)
	if record.Rate != "1850.00" {
		t.Errorf("rate = %q, want 1850.00", record.Rate)
	}
	if record.Currency != "USD" {
		t.Errorf("currency = %q, want USD", record.Currency)
	}
}

func TestExtractWeightRejectsSmallValues(t *testing.T) {
	record, _ := Extract("Weight: 45 kg of packaging material")
	if record.Weight != "" {
		t.Errorf("weight = %q, want empty (below minimum)", record.Weight)
	}
}

func TestExtractSectionHeaderLookahead(t *testing.T) {
	text := strings.Join([]string{
		"Shipper Information",
		"---------------------",
		"Name: Midwest Grain Co",
		"Address: 100 Elevator Rd",
	}, "\n")

	record, _ := Extract(text)
	if record.Shipper != "Midwest Grain Co" {
		t.Errorf("shipper = %q, want Midwest Grain Co", record.Shipper)
	}
}

func TestExtractNotesListMissingFields(t *testing.T) {
	_, notes := Extract("Mode: LTL")

	var missingNote string
	for _, note := range notes {
		if strings.HasPrefix(note, "Missing fields: ") {
			missingNote = note
		}
	}
	if missingNote == "" {
		t.Fatalf("no missing-fields note in %v", notes)
	}
	if !strings.Contains(missingNote, "carrier_name") {
		t.Errorf("missing-fields note does not mention carrier_name: %q", missingNote)
	}
}

func TestIsJunkValue(t *testing.T) {
	tests := []struct {
		val  string
		want bool
	}{
		{"N/A", true},
		{"tbd", true},
		{"---", true},
		{"- -", true},
		{"a", true},
		{"Carrier MC Phone Equipment Amount", true},
		{"| Carrier | MC |", true},
		{"FastFreight LLC", false},
		{"Acme Distribution Center", false},
		{"42,000 lbs", false},
	}

	for _, tt := range tests {
		if got := IsJunkValue(tt.val); got != tt.want {
			t.Errorf("IsJunkValue(%q) = %v, want %v", tt.val, got, tt.want)
		}
	}
}

func TestParseCarrierFromRow(t *testing.T) {
	tests := []struct {
		row  string
		want string
	}{
		{"FastFreight LLC  MC-123456  (555) 123-4567  $2,450.00", "FastFreight LLC"},
		{"Prairie Haulers Inc MC 789012", "Prairie Haulers Inc"},
		{"Short Line Transport", "Short Line Transport"},
		{"---", ""},
	}

	for _, tt := range tests {
		if got := parseCarrierFromRow(tt.row); got != tt.want {
			t.Errorf("parseCarrierFromRow(%q) = %q, want %q", tt.row, got, tt.want)
		}
	}
}

func TestRecordFoundAndMissing(t *testing.T) {
	record := Record{ShipmentID: "SH-1", Rate: "100.00"}

	found := record.Found()
	if !reflect.DeepEqual(found, []string{"shipment_id", "rate"}) {
		t.Errorf("Found() = %v", found)
	}
	if len(record.Missing()) != 9 {
		t.Errorf("Missing() = %v", record.Missing())
	}
	if got := record.CoverageConfidence(); got != 0.1818 {
		t.Errorf("CoverageConfidence() = %v, want 0.1818", got)
	}
}
