// Package currency converts base-currency (USD) amounts into a display
// currency and formats them for people.
package currency

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// Base is the currency every calculation is expressed in.
const Base = "USD"

// ErrInvalidRate is returned when an exchange rate is zero or negative.
var ErrInvalidRate = errors.New("exchange rate must be greater than 0")

// Display selects how the currency is written next to the amount.
type Display string

const (
	DisplayCode   Display = "code"
	DisplaySymbol Display = "symbol"
)

// Currency describes a supported display currency.
type Currency struct {
	Code   string `json:"code"`
	Label  string `json:"label"`
	Locale string `json:"locale"`
	Symbol string `json:"symbol"`

	thousands string
	decimal   string
}

var currencies = []Currency{
	{"ARS", "Argentina - Peso Argentino", "es-AR", "$", ".", ","},
	{"BOB", "Bolivia - Boliviano", "es-BO", "Bs", ".", ","},
	{"BRL", "Brasil - Real Brasileño", "pt-BR", "R$", ".", ","},
	{"CLP", "Chile - Peso Chileno", "es-CL", "$", ".", ","},
	{"COP", "Colombia - Peso Colombiano", "es-CO", "$", ".", ","},
	{"CRC", "Costa Rica - Colón", "es-CR", "₡", ".", ","},
	{"CUP", "Cuba - Peso Cubano", "es-CU", "$", ".", ","},
	{"DOP", "Rep. Dominicana - Peso Dominicano", "es-DO", "RD$", ",", "."},
	{"GTQ", "Guatemala - Quetzal", "es-GT", "Q", ",", "."},
	{"HNL", "Honduras - Lempira", "es-HN", "L", ",", "."},
	{"MXN", "México - Peso Mexicano", "es-MX", "$", ",", "."},
	{"NIO", "Nicaragua - Córdoba", "es-NI", "C$", ",", "."},
	{"PAB", "Panamá - Balboa", "es-PA", "B/.", ",", "."},
	{"PYG", "Paraguay - Guaraní", "es-PY", "₲", ".", ","},
	{"PEN", "Perú - Sol", "es-PE", "S/", ",", "."},
	{"USD", "Puerto Rico - Dólar Estadounidense", "en-PR", "US$", ",", "."},
	{"UYU", "Uruguay - Peso Uruguayo", "es-UY", "$U", ".", ","},
	{"VES", "Venezuela - Bolívar Soberano", "es-VE", "Bs.S", ".", ","},
}

// Currencies lists the supported display currencies.
func Currencies() []Currency {
	out := make([]Currency, len(currencies))
	copy(out, currencies)
	return out
}

// Lookup returns the currency with the given ISO code.
func Lookup(code string) (Currency, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, c := range currencies {
		if c.Code == code {
			return c, true
		}
	}
	return Currency{}, false
}

// Convert turns a base amount into the display currency.
func Convert(amount, rate float64) (float64, error) {
	if rate <= 0 {
		return 0, ErrInvalidRate
	}
	return amount * rate, nil
}

// ToBase turns a display-currency amount back into the base currency.
func ToBase(amount, rate float64) (float64, error) {
	if rate <= 0 {
		return 0, ErrInvalidRate
	}
	return amount / rate, nil
}

// DecimalPlaces returns the number of decimals to show for code. Currencies
// without minor units always show none.
func DecimalPlaces(code string, preferred int) int {
	switch strings.ToUpper(code) {
	case "CLP", "PYG":
		return 0
	}
	if preferred < 0 {
		return 0
	}
	if preferred > 6 {
		return 6
	}
	return preferred
}

// Format renders amount in the given currency, rounded half away from zero.
func Format(amount float64, code string, places int, display Display) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	cur, ok := Lookup(code)
	if !ok {
		cur = Currency{Code: code, Symbol: code, thousands: ",", decimal: "."}
	}
	places = DecimalPlaces(code, places)

	rounded, _ := decimal.NewFromFloat(amount).Round(int32(places)).Float64()
	number := humanize.FormatFloat(layout(cur, places), rounded)

	if display == DisplaySymbol {
		return fmt.Sprintf("%s %s", cur.Symbol, number)
	}
	return fmt.Sprintf("%s %s", number, cur.Code)
}

// layout builds the go-humanize format string, e.g. "#.###,##".
func layout(c Currency, places int) string {
	return "#" + c.thousands + "###" + c.decimal + strings.Repeat("#", places)
}
