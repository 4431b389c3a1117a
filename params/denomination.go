// Copyright 2026 The auditai Authors
// This file is part of the auditai library.
//
// The auditai library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The auditai library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the auditai library. If not, see <http://www.gnu.org/licenses/>.

package params

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/holiman/uint256"
)

// These are the multipliers for ether denominations.
// Example: To get the wei value of an amount in 'gwei', use
//
//	new(big.Int).Mul(value, big.NewInt(params.GWei))
const (
	Wei   = 1
	GWei  = 1e9
	Ether = 1e18
)

var errInvalidValue = errors.New("invalid value")

var units = []struct {
	suffix string
	mult   int64
}{
	{"ether", Ether},
	{"gwei", GWei},
	{"wei", Wei},
}

// ParseValue parses an amount to send along with a transaction. Plain integers
// (decimal or 0x-prefixed hex) are wei; a unit suffix of wei, gwei or ether
// allows decimal fractions, e.g. "0.05ether" or "1.5gwei". The empty string is
// zero.
func ParseValue(s string) (*big.Int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return new(big.Int), nil
	}
	for _, u := range units {
		if !strings.HasSuffix(s, u.suffix) {
			continue
		}
		num := strings.TrimSpace(strings.TrimSuffix(s, u.suffix))
		r, ok := new(big.Rat).SetString(num)
		if !ok || r.Sign() < 0 {
			return nil, fmt.Errorf("%w %q", errInvalidValue, s)
		}
		r.Mul(r, new(big.Rat).SetInt64(u.mult))
		if !r.IsInt() {
			return nil, fmt.Errorf("%w %q: fraction smaller than one wei", errInvalidValue, s)
		}
		if _, overflow := uint256.FromBig(r.Num()); overflow {
			return nil, fmt.Errorf("%w %q: exceeds 256 bits", errInvalidValue, s)
		}
		return new(big.Int).Set(r.Num()), nil
	}
	v, ok := math.ParseBig256(s)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("%w %q", errInvalidValue, s)
	}
	return v, nil
}

// FormatValue renders a wei amount in ether, e.g. "0.05 ether".
func FormatValue(wei *big.Int) string {
	if wei == nil || wei.Sign() == 0 {
		return "0 ether"
	}
	r := new(big.Rat).SetFrac(wei, big.NewInt(Ether))
	s := strings.TrimRight(r.FloatString(18), "0")
	return strings.TrimSuffix(s, ".") + " ether"
}
