// Package extraction recovers structured shipment fields from raw logistics
// document text, preferring an LLM when one is configured and falling back to
// a pattern-based cascade otherwise.
package extraction

import "math"

// FieldNames lists the shipment schema fields in their canonical order.
var FieldNames = []string{
	"shipment_id",
	"shipper",
	"consignee",
	"pickup_datetime",
	"delivery_datetime",
	"equipment_type",
	"mode",
	"rate",
	"currency",
	"weight",
	"carrier_name",
}

// Record is the fixed shipment schema. An empty string means the field was
// not found; it never means "known empty".
type Record struct {
	ShipmentID       string `json:"shipment_id,omitempty"`
	Shipper          string `json:"shipper,omitempty"`
	Consignee        string `json:"consignee,omitempty"`
	PickupDatetime   string `json:"pickup_datetime,omitempty"`
	DeliveryDatetime string `json:"delivery_datetime,omitempty"`
	EquipmentType    string `json:"equipment_type,omitempty"`
	Mode             string `json:"mode,omitempty"`
	Rate             string `json:"rate,omitempty"`
	Currency         string `json:"currency,omitempty"`
	Weight           string `json:"weight,omitempty"`
	CarrierName      string `json:"carrier_name,omitempty"`
}

// Result pairs a record with its diagnostic notes and the derived coverage
// confidence (fields found / 11).
type Result struct {
	Record     Record   `json:"shipment_data"`
	Confidence float64  `json:"confidence_score"`
	Notes      []string `json:"extraction_notes"`
}

func (r Record) field(name string) string {
	switch name {
	case "shipment_id":
		return r.ShipmentID
	case "shipper":
		return r.Shipper
	case "consignee":
		return r.Consignee
	case "pickup_datetime":
		return r.PickupDatetime
	case "delivery_datetime":
		return r.DeliveryDatetime
	case "equipment_type":
		return r.EquipmentType
	case "mode":
		return r.Mode
	case "rate":
		return r.Rate
	case "currency":
		return r.Currency
	case "weight":
		return r.Weight
	case "carrier_name":
		return r.CarrierName
	}
	return ""
}

func (r *Record) setField(name, value string) {
	switch name {
	case "shipment_id":
		r.ShipmentID = value
	case "shipper":
		r.Shipper = value
	case "consignee":
		r.Consignee = value
	case "pickup_datetime":
		r.PickupDatetime = value
	case "delivery_datetime":
		r.DeliveryDatetime = value
	case "equipment_type":
		r.EquipmentType = value
	case "mode":
		r.Mode = value
	case "rate":
		r.Rate = value
	case "currency":
		r.Currency = value
	case "weight":
		r.Weight = value
	case "carrier_name":
		r.CarrierName = value
	}
}

// Found returns the names of populated fields, in canonical order.
func (r Record) Found() []string {
	var found []string
	for _, name := range FieldNames {
		if r.field(name) != "" {
			found = append(found, name)
		}
	}
	return found
}

// Missing returns the names of unpopulated fields, in canonical order.
func (r Record) Missing() []string {
	var missing []string
	for _, name := range FieldNames {
		if r.field(name) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

// CoverageConfidence is the fraction of schema fields that were found,
// rounded to four decimal places.
func (r Record) CoverageConfidence() float64 {
	found := len(r.Found())
	return math.Round(float64(found)/float64(len(FieldNames))*10000) / 10000
}
