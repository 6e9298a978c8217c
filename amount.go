package harvest

import (
	"regexp"
	"strconv"
	"strings"
)

// currencyCodes maps recognized currency markers to canonical codes.
var currencyCodes = map[string]string{
	"$":   "USD",
	"€":   "EUR",
	"£":   "GBP",
	"¥":   "JPY",
	"zł":  "PLN",
	"pln": "PLN",
	"usd": "USD",
	"eur": "EUR",
	"gbp": "GBP",
	"czk": "CZK",
	"chf": "CHF",
}

const currencyMarkers = `[$€£¥]|zł|pln|usd|eur|gbp|czk|chf`

var (
	// marker-first ("$ 1,299.99") and amount-first ("29,99 zł") forms.
	// The amount may contain regular or non-breaking spaces as grouping.
	priceMarkerFirstRe = regexp.MustCompile(`(?i)(` + currencyMarkers + `)\s*(\d(?:[\d\s\x{00a0}\x{202f}.,]*\d)?)`)
	priceAmountFirstRe = regexp.MustCompile(`(?i)(\d(?:[\d\s\x{00a0}\x{202f}.,]*\d)?)\s*(` + currencyMarkers + `)`)
)

// parsePrice finds the first currency-marked amount in text and returns
// its normalized value, canonical currency code, and the matched
// substring (so callers can strip it out of name text).
func parsePrice(text string) (value float64, code string, raw string, ok bool) {
	if m := priceMarkerFirstRe.FindStringSubmatch(text); m != nil {
		if v, vok := normalizeAmount(m[2]); vok {
			return v, currencyCode(m[1]), m[0], true
		}
	}
	if m := priceAmountFirstRe.FindStringSubmatch(text); m != nil {
		if v, vok := normalizeAmount(m[1]); vok {
			return v, currencyCode(m[2]), m[0], true
		}
	}
	return 0, "", "", false
}

func currencyCode(marker string) string {
	if code, ok := currencyCodes[strings.ToLower(marker)]; ok {
		return code
	}
	return strings.ToUpper(marker)
}

// normalizeAmount parses a number with locale-ambiguous separators.
// Both "." and "," appear as decimal and thousands separators in the
// wild; the last separator wins as decimal when it is followed by one or
// two digits, everything else is grouping.
func normalizeAmount(s string) (float64, bool) {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\u202f':
			return -1
		}
		return r
	}, s)
	if s == "" {
		return 0, false
	}

	lastDot := strings.LastIndexByte(s, '.')
	lastComma := strings.LastIndexByte(s, ',')
	sep := lastDot
	if lastComma > sep {
		sep = lastComma
	}

	if sep >= 0 {
		head, tail := s[:sep], s[sep+1:]
		head = strings.NewReplacer(".", "", ",", "").Replace(head)
		if len(tail) >= 1 && len(tail) <= 2 {
			s = head + "." + tail
		} else {
			// Grouping separator: "1.299" or "12,345,678".
			s = head + tail
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// quantityUnit describes one entry of the fixed unit table.
type quantityUnit struct {
	field  string
	factor float64 // multiplier into the SI-normalized base (g or ml)
}

// quantityUnits is the fixed mass/volume unit table. Base units are grams
// and milliliters.
var quantityUnits = map[string]quantityUnit{
	"mg": {FieldWeight, 0.001},
	"g":  {FieldWeight, 1},
	"kg": {FieldWeight, 1000},
	"ml": {FieldVolume, 1},
	"cl": {FieldVolume, 10},
	"l":  {FieldVolume, 1000},
}

var quantityRe = regexp.MustCompile(`(?i)\b(\d+(?:[.,]\d+)?)\s*(mg|kg|g|ml|cl|l)\b`)

// parseQuantity finds the first mass/volume mention in text and returns
// the target field with its SI-normalized value.
func parseQuantity(text string) (field string, value float64, raw string, ok bool) {
	m := quantityRe.FindStringSubmatch(text)
	if m == nil {
		return "", 0, "", false
	}
	unit, known := quantityUnits[strings.ToLower(m[2])]
	if !known {
		return "", 0, "", false
	}
	v, vok := normalizeAmount(m[1])
	if !vok {
		return "", 0, "", false
	}
	return unit.field, v * unit.factor, m[0], true
}
