package extraction

import "testing"

func TestParseRecordJSONFenced(t *testing.T) {
	raw := "```json\n{\"shipment_id\": \"SH-1\", \"rate\": 2500.5, \"carrier_name\": null}\n```"

	record, err := parseRecordJSON(raw)
	if err != nil {
		t.Fatalf("parseRecordJSON: %v", err)
	}
	if record.ShipmentID != "SH-1" {
		t.Errorf("shipment_id = %q", record.ShipmentID)
	}
	if record.Rate != "2500.5" {
		t.Errorf("rate = %q, want numeric value as string", record.Rate)
	}
	if record.CarrierName != "" {
		t.Errorf("carrier_name = %q, want empty for null", record.CarrierName)
	}
}

func TestParseRecordJSONEmbeddedInProse(t *testing.T) {
	raw := `Here is the extracted data: {"mode": "FTL", "currency": "USD"} hope this helps`

	record, err := parseRecordJSON(raw)
	if err != nil {
		t.Fatalf("parseRecordJSON: %v", err)
	}
	if record.Mode != "FTL" {
		t.Errorf("mode = %q", record.Mode)
	}
	if record.Currency != "USD" {
		t.Errorf("currency = %q", record.Currency)
	}
}

func TestParseRecordJSONNoObject(t *testing.T) {
	if _, err := parseRecordJSON("I could not find any shipment data."); err == nil {
		t.Fatal("expected error when response contains no JSON object")
	}
}

func TestParseRecordJSONNullString(t *testing.T) {
	record, err := parseRecordJSON(`{"weight": "null", "shipper": " Acme Corp "}`)
	if err != nil {
		t.Fatalf("parseRecordJSON: %v", err)
	}
	if record.Weight != "" {
		t.Errorf("weight = %q, want empty for literal null string", record.Weight)
	}
	if record.Shipper != "Acme Corp" {
		t.Errorf("shipper = %q, want trimmed value", record.Shipper)
	}
}
