package deposit

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/zombor/palpa-deposit/internal/fault"
)

// EAN is a European Article Number as printed under a barcode
type EAN uint64

func (e EAN) String() string {
	return strconv.FormatUint(uint64(e), 10)
}

// ToEAN converts any Go integer kind to an EAN. Negative numbers and
// non-integers are rejected.
func ToEAN(v any) (EAN, bool) {
	switch n := v.(type) {
	case EAN:
		return n, true
	case int:
		return signed(int64(n))
	case int8:
		return signed(int64(n))
	case int16:
		return signed(int64(n))
	case int32:
		return signed(int64(n))
	case int64:
		return signed(n)
	case uint:
		return EAN(n), true
	case uint8:
		return EAN(n), true
	case uint16:
		return EAN(n), true
	case uint32:
		return EAN(n), true
	case uint64:
		return EAN(n), true
	}
	return 0, false
}

func signed(n int64) (EAN, bool) {
	if n < 0 {
		return 0, false
	}
	return EAN(n), true
}

// Record is the deposit information for one beverage container
type Record struct {
	EAN        EAN     `json:"ean"`
	Message    string  `json:"message"`
	Name       string  `json:"name"`
	Recycling  string  `json:"recycling"`
	DepositStr string  `json:"deposit_str"` // as displayed by the service, e.g. "0,15 €"
	Deposit    float64 `json:"deposit"`
	Type       string  `json:"type"`
}

// payload is the "payLoad" object of a successful lookup response
type payload struct {
	Message   string `json:"message"`
	Name      string `json:"name"`
	Recycling string `json:"recycling"`
	Deposit   string `json:"deposit"`
	Type      string `json:"type"`
}

func newRecord(ean EAN, p *payload) (*Record, error) {
	value, err := ParseDepositValue(p.Deposit)
	if err != nil {
		return nil, err
	}

	return &Record{
		EAN:        ean,
		Message:    p.Message,
		Name:       p.Name,
		Recycling:  p.Recycling,
		DepositStr: p.Deposit,
		Deposit:    value,
		Type:       p.Type,
	}, nil
}

// ParseDepositValue converts a currency formatted amount such as "0,15 €"
// to a number. Currency symbols and whitespace are trimmed from both ends and
// the decimal comma becomes a point.
func ParseDepositValue(s string) (float64, error) {
	trimmed := strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.Is(unicode.Sc, r)
	})
	// ParseFloat also reads NaN, Inf, exponents and hex floats
	if strings.ContainsFunc(trimmed, unicode.IsLetter) {
		return 0, fault.New(fault.ServiceProtocol, fmt.Sprintf("parsing deposit %q: not a decimal amount", s))
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(trimmed, ",", "."), 64)
	if err != nil {
		return 0, fault.Wrap(fault.ServiceProtocol, fmt.Sprintf("parsing deposit %q", s), err)
	}
	return value, nil
}

// String renders every field on its own line
func (r *Record) String() string {
	return strings.Join([]string{
		"EAN: " + r.EAN.String(),
		"Message: " + r.Message,
		"Name: " + r.Name,
		"Recycling: " + r.Recycling,
		"Deposit (str): " + r.DepositStr,
		"Deposit (float): " + formatDeposit(r.Deposit),
		"Type: " + r.Type,
	}, "\n")
}

// formatDeposit prints the shortest form that still reads as a decimal,
// so whole amounts keep a trailing ".0"
func formatDeposit(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
