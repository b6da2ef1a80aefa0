package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/haulstack/freight-assistant/llm"
)

// maxLLMInputChars keeps the document inside the model's context window.
const maxLLMInputChars = 12000

const extractionSystemPrompt = `You are an expert logistics data extractor. Extract the following structured fields from the document text provided.

Fields to extract:
- shipment_id: Any shipment/load/order/reference number
- shipper: The shipping company or origin party
- consignee: The receiving party or destination company
- pickup_datetime: Pickup date and time (use ISO format if possible)
- delivery_datetime: Delivery date and time (use ISO format if possible)
- equipment_type: Type of equipment (e.g., Dry Van, Reefer, Flatbed, 53' Trailer)
- mode: Transportation mode (e.g., FTL, LTL, Intermodal, Air)
- rate: The freight rate or total charges (numeric value)
- currency: Currency of the rate (e.g., USD, CAD, EUR)
- weight: Total weight of the shipment (include unit if available)
- carrier_name: Name of the carrier/trucking company

RULES:
1. Extract ONLY information explicitly stated in the document.
2. Use null for any field not found in the document.
3. For dates, try to use ISO 8601 format (YYYY-MM-DDTHH:MM:SS) when possible.
4. For rates, extract the numeric value as a string (e.g., "2500.00").
5. Return ONLY valid JSON, no additional text.

Respond with a JSON object containing exactly these fields. Example:
{
  "shipment_id": "SH-12345",
  "shipper": "ABC Corp",
  "consignee": "XYZ Inc",
  "pickup_datetime": "2024-01-15T08:00:00",
  "delivery_datetime": "2024-01-17T14:00:00",
  "equipment_type": "53' Dry Van",
  "mode": "FTL",
  "rate": "2500.00",
  "currency": "USD",
  "weight": "42000 lbs",
  "carrier_name": "FastFreight LLC"
}`

var embeddedJSONPattern = regexp.MustCompile(`(?s)\{[^{}]*\}`)

// Service extracts shipment records, preferring the configured LLM and
// falling back to the pattern cascade when the client is nil or fails.
type Service struct {
	llm    llm.Client
	logger *log.Logger
}

func NewService(client llm.Client, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		llm:    client,
		logger: logger,
	}
}

// ExtractShipment returns a populated Result for the given document text.
// It never returns an error: any LLM failure downgrades to the deterministic
// pattern extractor, and the notes record which method produced the record.
func (s *Service) ExtractShipment(ctx context.Context, text string) Result {
	if s.llm != nil {
		truncated := text
		if len(truncated) > maxLLMInputChars {
			truncated = truncated[:maxLLMInputChars]
		}
		result, err := s.extractWithLLM(ctx, truncated)
		if err == nil {
			return result
		}
		s.logger.Printf("llm extraction failed, falling back to pattern extraction: %v", err)
	}

	record, notes := Extract(text)
	return Result{
		Record:     record,
		Confidence: record.CoverageConfidence(),
		Notes:      notes,
	}
}

func (s *Service) extractWithLLM(ctx context.Context, text string) (Result, error) {
	raw, err := s.llm.Generate(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: extractionSystemPrompt},
			{Role: llm.RoleUser, Content: "Extract structured data from this logistics document:\n\n" + text},
		},
		Temperature: 0,
		MaxTokens:   800,
	})
	if err != nil {
		return Result{}, fmt.Errorf("generate extraction: %w", err)
	}

	record, err := parseRecordJSON(raw)
	if err != nil {
		return Result{}, err
	}

	found := record.Found()
	missing := record.Missing()

	notes := []string{
		"Extraction method: LLM-based",
		fmt.Sprintf("Fields extracted: %d/%d", len(found), len(FieldNames)),
	}
	if len(missing) > 0 {
		notes = append(notes, "Missing fields: "+strings.Join(missing, ", "))
	}

	return Result{
		Record:     record,
		Confidence: record.CoverageConfidence(),
		Notes:      notes,
	}, nil
}

// parseRecordJSON tolerates the usual LLM response framing: markdown code
// fences around the object, or prose with a JSON object embedded somewhere
// inside it.
func parseRecordJSON(raw string) (Record, error) {
	content := strings.TrimSpace(raw)

	if idx := strings.Index(content, "```json"); idx >= 0 {
		content = content[idx+len("```json"):]
		if end := strings.Index(content, "```"); end >= 0 {
			content = content[:end]
		}
		content = strings.TrimSpace(content)
	} else if idx := strings.Index(content, "```"); idx >= 0 {
		content = content[idx+len("```"):]
		if end := strings.Index(content, "```"); end >= 0 {
			content = content[:end]
		}
		content = strings.TrimSpace(content)
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(content), &fields); err != nil {
		embedded := embeddedJSONPattern.FindString(content)
		if embedded == "" {
			return Record{}, fmt.Errorf("no JSON object in llm response: %.200s", content)
		}
		if err := json.Unmarshal([]byte(embedded), &fields); err != nil {
			return Record{}, fmt.Errorf("parse llm response JSON: %w", err)
		}
	}

	var record Record
	for _, name := range FieldNames {
		record.setField(name, coerceFieldValue(fields[name]))
	}
	return record, nil
}

func coerceFieldValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		trimmed := strings.TrimSpace(val)
		if strings.EqualFold(trimmed, "null") {
			return ""
		}
		return trimmed
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", val)
	}
}
