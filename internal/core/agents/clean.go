package agents

import (
	"strconv"
	"strings"

	"github.com/dmarchenko/medclaims/internal/core/domain"
)

// cleanFields runs the type-keyed cleaning rule for every schema field.
// Every field name is present in the output; absent or unusable oracle
// values map to nil (or an empty list for list-shaped fields).
func cleanFields(schema domain.FieldSchema, raw map[string]any) map[string]any {
	cleaned := make(map[string]any, len(schema.Fields))
	for _, field := range schema.Fields {
		value := raw[field.Name]
		switch field.Type {
		case domain.FieldAmount:
			cleaned[field.Name] = parseAmount(value)
		case domain.FieldDate:
			cleaned[field.Name] = cleanDate(value)
		case domain.FieldPhone:
			cleaned[field.Name] = normalizePhone(value)
		case domain.FieldList:
			cleaned[field.Name] = cleanStringList(value, false)
		case domain.FieldCodes:
			cleaned[field.Name] = cleanStringList(value, true)
		default:
			cleaned[field.Name] = cleanText(value)
		}
	}
	return cleaned
}

// cleanText trims free text; blank or non-string input becomes nil.
func cleanText(value any) any {
	text, ok := value.(string)
	if !ok {
		return nil
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	return trimmed
}

// parseAmount strips currency symbols, commas and spaces, then converts
// to a float amount. Unparseable input maps to nil, never an error.
func parseAmount(value any) any {
	switch v := value.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(v)
		if cleaned == "" {
			return nil
		}
		amount, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return nil
		}
		return amount
	default:
		return nil
	}
}

// cleanDate trims whitespace only. Calendar validation is deliberately
// not performed here.
func cleanDate(value any) any {
	return cleanText(value)
}

// normalizePhone canonicalizes US numbers: 10 digits become
// "(XXX) XXX-XXXX", 11 digits with a leading 1 become "1-(XXX) XXX-XXXX".
// Anything else passes through trimmed.
func normalizePhone(value any) any {
	phone, ok := value.(string)
	if !ok {
		return nil
	}

	digits := strings.NewReplacer("(", "", ")", "", "-", "", " ", "").Replace(strings.TrimSpace(phone))
	switch {
	case len(digits) == 10 && isDigits(digits):
		return "(" + digits[:3] + ") " + digits[3:6] + "-" + digits[6:]
	case len(digits) == 11 && digits[0] == '1' && isDigits(digits[1:]):
		return "1-(" + digits[1:4] + ") " + digits[4:7] + "-" + digits[7:]
	}

	trimmed := strings.TrimSpace(phone)
	if trimmed == "" {
		return nil
	}
	return trimmed
}

// cleanStringList keeps non-empty string entries, trimmed. Exact
// duplicates are preserved. Code lists are additionally uppercased.
func cleanStringList(value any, uppercase bool) []string {
	items, ok := value.([]any)
	if !ok {
		return []string{}
	}

	cleaned := make([]string, 0, len(items))
	for _, item := range items {
		text, ok := item.(string)
		if !ok {
			continue
		}
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			continue
		}
		if uppercase {
			trimmed = strings.ToUpper(trimmed)
		}
		cleaned = append(cleaned, trimmed)
	}
	return cleaned
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
