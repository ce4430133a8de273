package value

import "math/big"

// bigFromFloat converts an integral float64 to a *big.Int; ok is false if f
// is not representable as an exact integer.
func bigFromFloat(f float64) (*big.Int, bool) {
	bf := new(big.Float).SetFloat64(f)
	bi, acc := bf.Int(nil)
	return bi, acc == big.Exact
}

// ParseBigInt parses a decimal (or 0x/0o/0b-prefixed) integer literal into a
// *big.Int, mirroring the BigInt() constructor's string-to-bigint
// conversion.
func ParseBigInt(s string) (*big.Int, bool) {
	bi := new(big.Int)
	base := 10
	if len(s) > 1 && s[0] == '0' {
		switch s[1] {
		case 'x', 'X':
			base, s = 16, s[2:]
		case 'o', 'O':
			base, s = 8, s[2:]
		case 'b', 'B':
			base, s = 2, s[2:]
		}
	}
	if s == "" {
		return bi, true
	}
	_, ok := bi.SetString(s, base)
	return bi, ok
}
