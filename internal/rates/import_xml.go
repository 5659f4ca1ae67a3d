package rates

import (
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
)

// ImportOptions controls how a central-bank key-rate feed is mapped
type ImportOptions struct {
	// KeyRateKey is the admin key the feed's latest rate is stored under
	KeyRateKey string
	// KeyRateMargin is added to the feed's rate (a lending margin)
	KeyRateMargin decimal.Decimal
}

// DefaultImportOptions maps the latest key rate to loan_rate with no margin
func DefaultImportOptions() ImportOptions {
	return ImportOptions{KeyRateKey: KeyLoanRate}
}

// ImportXML reads admin rates from an XML rate sheet. Two layouts are accepted:
//
//	<rates><rate key="loan_rate">8.5</rate>...</rates>
//
// and a key-rate feed whose //KeyRate/KR elements carry a Rate child, newest first.
func ImportXML(r io.Reader, opts ImportOptions) ([]Entry, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("failed to parse XML: %w", err)
	}

	if sheet := doc.FindElements("//rates/rate"); len(sheet) > 0 {
		return parseRateSheet(sheet)
	}

	krElements := doc.FindElements("//KeyRate/KR")
	if len(krElements) == 0 {
		return nil, fmt.Errorf("no rate data found in XML")
	}
	rateElement := krElements[0].FindElement("./Rate")
	if rateElement == nil {
		return nil, fmt.Errorf("rate element not found in XML")
	}
	rate, err := decimal.NewFromString(strings.TrimSpace(rateElement.Text()))
	if err != nil {
		return nil, fmt.Errorf("failed to parse key rate %q: %w", rateElement.Text(), err)
	}
	key := opts.KeyRateKey
	if key == "" {
		key = KeyLoanRate
	}
	return []Entry{{Key: key, Value: rate.Add(opts.KeyRateMargin)}}, nil
}

func parseRateSheet(elements []*etree.Element) ([]Entry, error) {
	entries := make([]Entry, 0, len(elements))
	for i, el := range elements {
		key := strings.TrimSpace(el.SelectAttrValue("key", ""))
		if key == "" {
			return nil, fmt.Errorf("rate %d has no key attribute", i+1)
		}
		value, err := decimal.NewFromString(strings.TrimSpace(el.Text()))
		if err != nil {
			return nil, fmt.Errorf("failed to parse rate %s: %w", key, err)
		}
		entries = append(entries, Entry{Key: key, Value: value})
	}
	return entries, nil
}
