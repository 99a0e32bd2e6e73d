package scancode

import "unicode/utf8"

// Symbology is a barcode symbology the scanners are configured for.
type Symbology string

const (
	QR      Symbology = "qr"
	EAN13   Symbology = "ean13"
	EAN8    Symbology = "ean8"
	UPCA    Symbology = "upc_a"
	UPCE    Symbology = "upc_e"
	Code128 Symbology = "code128"
	Code39  Symbology = "code39"
	Code93  Symbology = "code93"
)

// qrByteCapacity is the byte-mode capacity of a version 40-L QR code.
const qrByteCapacity = 2953

const code39Charset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ-. $/+%"

// Symbologies lists, most specific first, the symbologies able to carry code.
func Symbologies(code string) []Symbology {
	var out []Symbology
	if code == "" {
		return out
	}
	if isDigits(code) {
		switch len(code) {
		case 13:
			if validCheckDigit(code) {
				out = append(out, EAN13)
			}
		case 12:
			if validCheckDigit(code) {
				out = append(out, UPCA)
			}
		case 8:
			if validCheckDigit(code) {
				out = append(out, EAN8)
			}
			if validUPCE(code) {
				out = append(out, UPCE)
			}
		}
	}
	if inCharset(code, code39Charset) {
		out = append(out, Code39, Code93)
	}
	if isPrintableASCII(code) {
		out = append(out, Code128)
	}
	if utf8.ValidString(code) && len(code) <= qrByteCapacity {
		out = append(out, QR)
	}
	return out
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}

func inCharset(s, charset string) bool {
	for _, r := range s {
		found := false
		for _, c := range charset {
			if r == c {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func isPrintableASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 32 || s[i] > 126 {
			return false
		}
	}
	return true
}

// validCheckDigit verifies the GS1 mod-10 check digit used by EAN-13, EAN-8
// and UPC-A: weights alternate 3,1 starting from the digit next to the check digit.
func validCheckDigit(code string) bool {
	n := len(code)
	sum := 0
	for i := n - 2; i >= 0; i-- {
		d := int(code[i] - '0')
		if (n-2-i)%2 == 0 {
			d *= 3
		}
		sum += d
	}
	check := (10 - sum%10) % 10
	return check == int(code[n-1]-'0')
}

// validUPCE expands an 8-digit UPC-E code to UPC-A and checks its check digit.
func validUPCE(code string) bool {
	if code[0] != '0' && code[0] != '1' {
		return false
	}
	ns, d, check := code[0:1], code[1:7], code[7:8]
	var body string
	switch last := d[5]; last {
	case '0', '1', '2':
		body = d[0:2] + string(last) + "0000" + d[2:5]
	case '3':
		body = d[0:3] + "00000" + d[3:5]
	case '4':
		body = d[0:4] + "00000" + d[4:5]
	default:
		body = d[0:5] + "0000" + string(last)
	}
	return validCheckDigit(ns + body + check)
}
