package extraction

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// The tables below are ordered cascades: earlier entries encode more
// specific phrasing and always win. Extending coverage to a new document
// template family means appending entries, never reordering existing ones.

var idPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:reference|ref)\s*id\s*:?\s*([A-Za-z0-9][\w\-]{2,25})`),
	regexp.MustCompile(`(?i)load\s*id\s*:?\s*([A-Za-z0-9][\w\-]{2,25})`),
	regexp.MustCompile(`(?i)shipment\s*(?:id|#|no\.?|number)\s*:?\s*([A-Za-z0-9][\w\-]{2,25})`),
	regexp.MustCompile(`(?i)load\s*(?:#|no\.?|number)\s*:?\s*([A-Za-z0-9][\w\-]{2,25})`),
	regexp.MustCompile(`(?i)(?:bol|pro)\s*(?:#|no\.?|number)\s*:?\s*([A-Za-z0-9][\w\-]{2,25})`),
	regexp.MustCompile(`(?i)confirmation\s*(?:#|no\.?|number)\s*:?\s*([A-Za-z0-9][\w\-]{2,25})`),
	regexp.MustCompile(`(?i)order\s*(?:id|#|no\.?|number)\s*:?\s*([A-Za-z0-9][\w\-]{2,25})`),
	regexp.MustCompile(`(?i)(?:rate\s+)?conf(?:irmation)?\s*#?\s*:?\s*([A-Za-z0-9][\w\-]{2,25})`),
}

var shipperLabelPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)shipper\s*(?:name)?\s*:\s*(.+?)(?:\n|$)`),
	regexp.MustCompile(`(?i)ship\s+from\s*:\s*(.+?)(?:\n|$)`),
	regexp.MustCompile(`(?i)origin\s*(?:name|company)?\s*:\s*(.+?)(?:\n|$)`),
	regexp.MustCompile(`(?i)pick\s*-?\s*up\s+(?:location|company|name)\s*:\s*(.+?)(?:\n|$)`),
}

var consigneeLabelPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)consignee\s*(?:name)?\s*:\s*(.+?)(?:\n|$)`),
	regexp.MustCompile(`(?i)ship\s+to\s*:\s*(.+?)(?:\n|$)`),
	regexp.MustCompile(`(?i)deliver\s+to\s*:\s*(.+?)(?:\n|$)`),
	regexp.MustCompile(`(?i)receiver\s*(?:name)?\s*:\s*(.+?)(?:\n|$)`),
	regexp.MustCompile(`(?i)destination\s*(?:name|company)?\s*:\s*(.+?)(?:\n|$)`),
}

var (
	shipperSectionPattern   = regexp.MustCompile(`(?i)^(?:shipper|ship\s+from|origin)\s*(?:information|details)?\s*$`)
	consigneeSectionPattern = regexp.MustCompile(`(?i)^(?:consignee|ship\s+to|deliver\s+to|receiver|destination)\s*(?:information|details)?\s*$`)
	dropHeaderPattern       = regexp.MustCompile(`(?i)^drop\s*(?:off)?\s*$`)
	bolHeaderPattern        = regexp.MustCompile(`(?i)^shipper\s+(?:consignee|receiver)`)
	bolPartyLinePattern     = regexp.MustCompile(`^(?:\d+\.)?\s*(.+?)\s*[,;]?\s*$`)

	// Tail match is deliberately case-sensitive: it targets a TMS export
	// artifact where "Pickup" is glued to the end of the preceding line.
	pickupTailPattern  = regexp.MustCompile(`Pickup\s*$`)
	consigneeUSAOffset = regexp.MustCompile(`USA\d*\.?\s*(.+?)(?:\s*,\s*$|\s*$)`)
)

// dateToken matches the generic date shapes seen across rate confirmations
// and BOLs: 1/15/2024, 2024-01-15, Jan 15, 2024.
const dateToken = `(?:\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4}|\w+\s+\d{1,2},?\s+\d{4}|\d{4}-\d{2}-\d{2})`

var dateTokenPattern = regexp.MustCompile(dateToken)

var pickupPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:shipping|pickup|pick[\s-]*up)\s*date\s*:?\s*(` + dateToken + `)`),
	regexp.MustCompile(`(?i)ship\s*date\s*:?\s*(` + dateToken + `)`),
	regexp.MustCompile(`(?i)pickup\s*(?:date|time|dt)?\s*:?\s*(` + dateToken + `)`),
	regexp.MustCompile(`(?i)loading\s*(?:date|time)?\s*:?\s*(` + dateToken + `)`),
	regexp.MustCompile(`(?i)earliest\s*pick\s*-?\s*up\s*:?\s*(` + dateToken + `)`),
}

var deliveryPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)delivery\s*date\s*:?\s*(` + dateToken + `)`),
	regexp.MustCompile(`(?i)deliver(?:y)?\s*date\s*:?\s*(` + dateToken + `)`),
	regexp.MustCompile(`(?i)drop[\s-]*off\s*(?:date|time)?\s*:?\s*(` + dateToken + `)`),
	regexp.MustCompile(`(?i)latest\s*delivery?\s*:?\s*(` + dateToken + `)`),
	regexp.MustCompile(`(?i)(?:must|due|expected)\s*(?:deliver|arrival)\s*:?\s*(` + dateToken + `)`),
}

var (
	pickupContextPattern   = regexp.MustCompile(`(?i)pick[\s-]*up|origin|loading|shipping\s*date|ship\s*date`)
	deliveryContextPattern = regexp.MustCompile(`(?i)deliver|destination|drop[\s-]*off`)
)

var equipmentLabelPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)equipment\s*(?:type)?\s*:\s*(.+?)(?:\n|$)`),
	regexp.MustCompile(`(?i)trailer\s*(?:type|size)?\s*:\s*(.+?)(?:\n|$)`),
	regexp.MustCompile(`(?i)truck\s*(?:type)?\s*:\s*(.+?)(?:\n|$)`),
}

// equipmentKeywords maps lowercase document phrasing to canonical equipment
// names. First hit wins, so longer, more specific phrases come first.
var equipmentKeywords = []struct {
	match     string
	canonical string
}{
	{"53' dry van", "53' Dry Van"},
	{"48' dry van", "48' Dry Van"},
	{"53' reefer", "53' Reefer"},
	{"48' reefer", "48' Reefer"},
	{"53ft", "53' Trailer"},
	{"48ft", "48' Trailer"},
	{"dry van", "Dry Van"},
	{"reefer", "Reefer"},
	{"flatbed", "Flatbed"},
	{"step deck", "Step Deck"},
	{"tanker", "Tanker"},
	{"container", "Container"},
	{"box truck", "Box Truck"},
	{"sprinter", "Sprinter Van"},
}

var modeLabelPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)mode\s*:\s*(.+?)(?:\n|$)`),
	regexp.MustCompile(`(?i)transportation\s*mode\s*:\s*(.+?)(?:\n|$)`),
	regexp.MustCompile(`(?i)service\s*(?:type|mode)\s*:\s*(.+?)(?:\n|$)`),
	regexp.MustCompile(`(?i)load\s*type\s*:?\s*\n?\s*(FTL|LTL|INTERMODAL)`),
}

// modeKeywords are matched against the upper-cased document text.
var modeKeywords = []struct {
	match     string
	canonical string
}{
	{"FULL TRUCKLOAD", "FTL"},
	{"FTL", "FTL"},
	{"LESS THAN TRUCKLOAD", "LTL"},
	{"LESS-THAN-TRUCKLOAD", "LTL"},
	{"LTL", "LTL"},
	{"INTERMODAL", "Intermodal"},
	{"DRAYAGE", "Drayage"},
	{"AIR FREIGHT", "Air Freight"},
	{"OCEAN", "Ocean"},
	{"PARTIAL", "Partial"},
}

var ratePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:carrier\s*pay\s*)?total\s*[:=]?\s*\$?\s*([\d,]+\.?\d{0,2})\s*USD`),
	regexp.MustCompile(`(?i)total\s*(?:rate|charges?|due|amount|cost)\s*[:=]?\s*\$?\s*([\d,]+\.?\d{0,2})`),
	regexp.MustCompile(`(?i)(?:agreed|contracted|all[\s-]*in)\s*(?:rate|amount|price)\s*[:=]?\s*\$?\s*([\d,]+\.?\d{0,2})`),
	regexp.MustCompile(`(?i)TOTAL\s*(?:DUE)?\s*[:=]?\s*\$?\s*([\d,]+\.?\d{0,2})`),
	regexp.MustCompile(`(?i)line\s*haul\s*(?:rate)?\s*[:=]?\s*\$?\s*([\d,]+\.?\d{0,2})`),
	regexp.MustCompile(`(?i)(?:freight\s+)?rate\s*[:=]?\s*\$?\s*([\d,]+\.?\d{0,2})`),
	regexp.MustCompile(`(?i)amount\s*[:=]?\s*\$\s*([\d,]+\.?\d{0,2})`),
	regexp.MustCompile(`(?i)(?:agreed\s+)?amount\s*\(USD\)\s*.*?\$?\s*([\d,]+\.?\d{0,2})`),
}

var dollarAmountPattern = regexp.MustCompile(`\$\s*([\d,]+\.\d{2})`)

var weightPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:gross\s+)?weight\s*:?\s*([\d,]+\.?\d*)\s*(lbs?|kg|tons?|pounds?)`),
	regexp.MustCompile(`(?i)(?:total\s+)?weight\s*:?\s*([\d,]+\.?\d*)\s*(lbs?|kg|tons?|pounds?)`),
	regexp.MustCompile(`(?i)([\d,]+\.?\d+)\s*(lbs?|pounds?)`),
	regexp.MustCompile(`(?i)([\d,]{3,})\s*(lbs?|pounds?)`),
}

var carrierLabelPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)carrier\s*name\s*:\s*(.+?)(?:\n|$)`),
	regexp.MustCompile(`(?i)trucking\s*(?:company|co\.?)\s*:\s*(.+?)(?:\n|$)`),
	regexp.MustCompile(`(?i)transport(?:ation)?\s*(?:company|provider)\s*:\s*(.+?)(?:\n|$)`),
}

var (
	carrierHeaderPattern    = regexp.MustCompile(`(?i)^carrier\s*(?:information|details)\s*$`)
	carrierRowMarkerPattern = regexp.MustCompile(`^(.+?)\s+(?:MC[\-\s]?\d|\(\d{3}\)|\$\d)`)
	doubleSpacePattern      = regexp.MustCompile(`\s{2,}`)
	transportCompanyLine    = regexp.MustCompile(`(?i)transportation\s+company`)
)

// concatFixes regularize concatenation artifacts left by upstream PDF text
// extraction, e.g. "FTLShipping Date" or "USDPickup".
var concatFixes = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`(FTL|LTL)(Shipping|Delivery|Ship)`), "$1 $2"},
	{regexp.MustCompile(`([\w.+\-]+@[\w.\-]+)(Dispatcher|Load)`), "$1 $2"},
	{regexp.MustCompile(`(USD)(Pickup|Drop)`), "$1 $2"},
}

// Extract recovers shipment fields from raw document text using the ordered
// pattern cascades. It is deterministic: identical text yields an identical
// record and notes. Fields that cannot be confidently extracted stay empty.
func Extract(text string) (Record, []string) {
	textUpper := strings.ToUpper(text)
	textLower := strings.ToLower(text)
	lines := strings.Split(text, "\n")

	cleanedText := text
	for _, fix := range concatFixes {
		cleanedText = fix.re.ReplaceAllString(cleanedText, fix.repl)
	}
	cleanedLines := strings.Split(cleanedText, "\n")

	var record Record
	record.ShipmentID = extractShipmentID(text, cleanedText)
	record.Shipper = extractShipper(text, lines, cleanedLines)
	record.Consignee = extractConsignee(text, lines)
	record.PickupDatetime, record.DeliveryDatetime = extractDates(cleanedText, lines)
	record.EquipmentType = extractEquipmentType(text, textLower)
	record.Mode = extractMode(text, textUpper)
	record.Rate = extractRate(text)
	record.Currency = inferCurrency(text, textUpper)
	record.Weight = extractWeight(text)
	record.CarrierName = extractCarrierName(text, lines)

	found := record.Found()
	missing := record.Missing()

	notes := []string{
		"Extraction method: pattern-based (LLM unavailable)",
		fmt.Sprintf("Fields found: %d/%d", len(found), len(FieldNames)),
	}
	if len(missing) > 0 {
		notes = append(notes, "Missing fields: "+strings.Join(missing, ", "))
	}

	return record, notes
}

func extractShipmentID(text, cleanedText string) string {
	if val := FindAfterLabel(text, idPatterns); val != "" {
		return val
	}
	return FindAfterLabel(cleanedText, idPatterns)
}

func extractShipper(text string, lines, cleanedLines []string) string {
	val := FindAfterLabel(text, shipperLabelPatterns)

	if val == "" {
		for i, line := range lines {
			if shipperSectionPattern.MatchString(strings.TrimSpace(line)) {
				val = findNextValueLine(lines, i, 5)
				break
			}
		}
	}

	if val == "" {
		// TMS rate confirmations put the shipper under a bare "Pickup"
		// header, sometimes glued to the end of the previous line.
		for i, line := range cleanedLines {
			if strings.EqualFold(strings.TrimSpace(line), "pickup") {
				val = findNextValueLine(cleanedLines, i, 3)
				break
			}
		}
		if val == "" {
			for i, line := range cleanedLines {
				if pickupTailPattern.MatchString(strings.TrimSpace(line)) {
					val = findNextValueLine(cleanedLines, i, 3)
					break
				}
			}
		}
	}

	if val == "" {
		// BOL layout: "Shipper Consignee" header with party data below.
		for i, line := range lines {
			if bolHeaderPattern.MatchString(strings.TrimSpace(line)) {
				if i+1 < len(lines) {
					next := strings.TrimSpace(lines[i+1])
					if match := bolPartyLinePattern.FindStringSubmatch(next); match != nil {
						val = strings.TrimSuffix(strings.TrimSpace(match[1]), ",")
					}
				}
				break
			}
		}
	}

	if val != "" && !IsJunkValue(val) {
		return truncate(val, 100)
	}
	return ""
}

func extractConsignee(text string, lines []string) string {
	val := FindAfterLabel(text, consigneeLabelPatterns)

	if val == "" {
		for i, line := range lines {
			if consigneeSectionPattern.MatchString(strings.TrimSpace(line)) {
				val = findNextValueLine(lines, i, 5)
				break
			}
		}
	}

	if val == "" {
		for i, line := range lines {
			trimmed := strings.TrimSpace(line)
			if strings.EqualFold(trimmed, "drop") || dropHeaderPattern.MatchString(trimmed) {
				val = findNextValueLine(lines, i, 3)
				break
			}
		}
	}

	if val == "" {
		// BOL layout again: consignee data often trails the origin address
		// on the same extracted line, e.g. "Los Angeles, CA, USA1.XYZ ,".
		for i, line := range lines {
			if bolHeaderPattern.MatchString(strings.TrimSpace(line)) {
				limit := i + 5
				if limit > len(lines) {
					limit = len(lines)
				}
				for j := i + 1; j < limit; j++ {
					if match := consigneeUSAOffset.FindStringSubmatch(lines[j]); match != nil {
						candidate := strings.TrimSuffix(strings.TrimSpace(match[1]), ",")
						if len(candidate) > 1 {
							val = candidate
							break
						}
					}
				}
				break
			}
		}
	}

	if val != "" && !IsJunkValue(val) {
		return truncate(val, 100)
	}
	return ""
}

func extractDates(cleanedText string, lines []string) (pickup, delivery string) {
	pickup = FindAfterLabel(cleanedText, pickupPatterns)
	delivery = FindAfterLabel(cleanedText, deliveryPatterns)

	if pickup == "" {
		pickup = contextualDate(lines, pickupContextPattern)
	}
	if delivery == "" {
		delivery = contextualDate(lines, deliveryContextPattern)
	}
	return pickup, delivery
}

// contextualDate scans for a line mentioning a date-context keyword and takes
// the first date-shaped token on that line or the next one.
func contextualDate(lines []string, context *regexp.Regexp) string {
	for i, line := range lines {
		if !context.MatchString(line) {
			continue
		}
		if token := dateTokenPattern.FindString(line); token != "" {
			return strings.TrimSpace(token)
		}
		if i+1 < len(lines) {
			if token := dateTokenPattern.FindString(lines[i+1]); token != "" {
				return strings.TrimSpace(token)
			}
		}
	}
	return ""
}

func extractEquipmentType(text, textLower string) string {
	if val := FindAfterLabel(text, equipmentLabelPatterns); val != "" {
		return truncate(val, 50)
	}
	for _, kw := range equipmentKeywords {
		if strings.Contains(textLower, kw.match) {
			return kw.canonical
		}
	}
	return ""
}

func extractMode(text, textUpper string) string {
	if val := FindAfterLabel(text, modeLabelPatterns); val != "" {
		return val
	}
	for _, kw := range modeKeywords {
		if strings.Contains(textUpper, kw.match) {
			return kw.canonical
		}
	}
	return ""
}

// extractRate accepts only amounts in the plausible freight range (10,
// 1,000,000); anything outside falls through to the next pattern. When no
// labeled pattern matches, the largest plausible dollar amount in the
// document is reported.
func extractRate(text string) string {
	for _, pattern := range ratePatterns {
		match := pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		rateVal := strings.TrimSpace(strings.ReplaceAll(match[1], ",", ""))
		if num, err := strconv.ParseFloat(rateVal, 64); err == nil && num > 10 && num < 1000000 {
			return rateVal
		}
	}

	var best float64
	found := false
	for _, match := range dollarAmountPattern.FindAllStringSubmatch(text, -1) {
		num, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", ""), 64)
		if err != nil || num <= 10 || num >= 1000000 {
			continue
		}
		if !found || num > best {
			best = num
		}
		found = true
	}
	if found {
		return fmt.Sprintf("%.2f", best)
	}
	return ""
}

// inferCurrency is rule-based rather than pattern-captured; the priority
// order is fixed (USD, CAD, EUR, GBP) and the first matching rule wins.
func inferCurrency(text, textUpper string) string {
	switch {
	case strings.Contains(text, "$") || strings.Contains(textUpper, "USD"):
		return "USD"
	case strings.Contains(textUpper, "CAD"):
		return "CAD"
	case strings.Contains(textUpper, "EUR") || strings.Contains(text, "€"):
		return "EUR"
	case strings.Contains(textUpper, "GBP") || strings.Contains(text, "£"):
		return "GBP"
	}
	return ""
}

// extractWeight accepts only values >= 50 so small quantities (pallet
// counts, piece counts) are not mistaken for shipment weights.
func extractWeight(text string) string {
	for _, pattern := range weightPatterns {
		match := pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		num := strings.TrimSpace(match[1])
		unit := strings.TrimSpace(match[2])
		parsed, err := strconv.ParseFloat(strings.ReplaceAll(num, ",", ""), 64)
		if err != nil || parsed < 50 {
			continue
		}
		return strings.TrimSpace(num + " " + unit)
	}
	return ""
}

func extractCarrierName(text string, lines []string) string {
	if val := FindAfterLabel(text, carrierLabelPatterns); val != "" && len(strings.Fields(val)) <= 8 {
		return truncate(val, 100)
	}

	for i, line := range lines {
		if !carrierHeaderPattern.MatchString(strings.TrimSpace(line)) {
			continue
		}
		limit := i + 5
		if limit > len(lines) {
			limit = len(lines)
		}
		for j := i + 1; j < limit; j++ {
			candidate := strings.TrimSpace(lines[j])
			if candidate == "" {
				continue
			}
			if IsJunkValue(candidate) {
				continue
			}
			if parsed := parseCarrierFromRow(candidate); parsed != "" {
				return truncate(parsed, 100)
			}
			break
		}
		break
	}

	for i, line := range lines {
		if !transportCompanyLine.MatchString(line) {
			continue
		}
		if i+1 < len(lines) {
			candidate := strings.TrimSpace(lines[i+1])
			if candidate != "" && candidate != "-" && !IsJunkValue(candidate) {
				return truncate(candidate, 100)
			}
		}
		break
	}

	return ""
}

// parseCarrierFromRow pulls a carrier company name out of a table data row,
// trying three decreasingly strict heuristics: text before an MC/phone/dollar
// marker, the first double-space-delimited column, or the whole line when it
// is short and clean.
func parseCarrierFromRow(rawLine string) string {
	if rawLine == "" || IsJunkValue(rawLine) {
		return ""
	}

	if match := carrierRowMarkerPattern.FindStringSubmatch(rawLine); match != nil {
		name := strings.TrimSpace(match[1])
		if len(name) > 2 && !IsJunkValue(name) {
			return name
		}
	}

	parts := doubleSpacePattern.Split(rawLine, -1)
	if len(parts) > 0 {
		first := strings.TrimSpace(parts[0])
		if len(first) > 2 && !IsJunkValue(first) {
			return first
		}
	}

	if len(strings.Fields(rawLine)) <= 6 && !IsJunkValue(rawLine) {
		return rawLine
	}

	return ""
}

func truncate(s string, limit int) string {
	if len(s) > limit {
		return s[:limit]
	}
	return s
}
