// Package scancode generates and checks the payloads printed on product
// labels. Two generated formats exist: QR payloads of the form
// PRODUCT_<name>_<unix ms> and numeric barcodes of the form
// BC<unix ms><4 random digits>.
package scancode

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
	"unicode"
)

const (
	productPrefix = "PRODUCT_"
	barcodePrefix = "BC"

	// MaxLength bounds manually entered codes.
	MaxLength = 128
)

// Kind selects which format Generator.New produces.
type Kind string

const (
	KindQR      Kind = "qr"
	KindBarcode Kind = "barcode"
)

// Generator produces scan codes. The zero value uses the wall clock and
// math/rand/v2.
type Generator struct {
	Now  func() time.Time
	IntN func(n int) int
}

// NewGenerator returns a Generator backed by the wall clock.
func NewGenerator() *Generator {
	return &Generator{Now: time.Now, IntN: rand.IntN}
}

func (g *Generator) now() time.Time {
	if g == nil || g.Now == nil {
		return time.Now()
	}
	return g.Now()
}

func (g *Generator) intN(n int) int {
	if g == nil || g.IntN == nil {
		return rand.IntN(n)
	}
	return g.IntN(n)
}

// New returns a fresh code of the requested kind for a product called name.
func (g *Generator) New(kind Kind, name string) (string, error) {
	switch kind {
	case KindQR, "":
		return g.ProductQR(name), nil
	case KindBarcode:
		return g.Barcode(), nil
	default:
		return "", fmt.Errorf("unknown scan code kind %q", kind)
	}
}

// ProductQR returns PRODUCT_<lowercased name, whitespace runs replaced by '-'>_<unix ms>.
func (g *Generator) ProductQR(name string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(name)), "-")
	return fmt.Sprintf("%s%s_%d", productPrefix, normalized, g.now().UnixMilli())
}

// Barcode returns BC<unix ms><4-digit random>, printable as Code128.
func (g *Generator) Barcode() string {
	return fmt.Sprintf("%s%d%d", barcodePrefix, g.now().UnixMilli(), 1000+g.intN(9000))
}

// Validate checks a manually entered code: non-empty, bounded, printable and
// encodable by at least one supported symbology.
func Validate(code string) error {
	if code == "" {
		return fmt.Errorf("scan code is required")
	}
	if len(code) > MaxLength {
		return fmt.Errorf("scan code longer than %d characters", MaxLength)
	}
	if strings.TrimSpace(code) != code {
		return fmt.Errorf("scan code has leading or trailing whitespace")
	}
	for _, r := range code {
		if !unicode.IsPrint(r) {
			return fmt.Errorf("scan code contains non-printable character %q", r)
		}
	}
	if len(Symbologies(code)) == 0 {
		return fmt.Errorf("scan code %q cannot be encoded by any supported symbology", code)
	}
	return nil
}
