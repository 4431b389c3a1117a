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

package deployer

import (
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
)

var bigType = reflect.TypeOf((*big.Int)(nil))

// constructorArgs converts textual constructor arguments to the Go values the
// ABI packer expects for the constructor inputs. Values that are not strings
// are passed through for the packer to check.
func constructorArgs(contract abi.ABI, args []interface{}) ([]interface{}, error) {
	inputs := contract.Constructor.Inputs
	if len(args) != len(inputs) {
		return nil, fmt.Errorf("constructor takes %d arguments, got %d", len(inputs), len(args))
	}
	out := make([]interface{}, len(args))
	for i, arg := range args {
		v, err := convertArg(inputs[i].Type, arg)
		if err != nil {
			name := inputs[i].Name
			if name == "" {
				name = "#" + strconv.Itoa(i)
			}
			return nil, fmt.Errorf("argument %s (%s): %w", name, inputs[i].Type.String(), err)
		}
		out[i] = v
	}
	return out, nil
}

func convertArg(t abi.Type, arg interface{}) (interface{}, error) {
	s, ok := arg.(string)
	if !ok || t.T == abi.StringTy {
		return arg, nil
	}
	s = strings.TrimSpace(s)

	switch t.T {
	case abi.IntTy, abi.UintTy:
		n, ok := math.ParseBig256(s)
		if !ok {
			return nil, fmt.Errorf("invalid integer %q", s)
		}
		if err := checkRange(t, n); err != nil {
			return nil, err
		}
		target := t.GetType()
		if target == bigType {
			return n, nil
		}
		rv := reflect.New(target).Elem()
		if t.T == abi.UintTy {
			rv.SetUint(n.Uint64())
		} else {
			rv.SetInt(n.Int64())
		}
		return rv.Interface(), nil

	case abi.BoolTy:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("invalid boolean %q", s)
		}
		return b, nil

	case abi.AddressTy:
		if !common.IsHexAddress(s) {
			return nil, fmt.Errorf("invalid address %q", s)
		}
		return common.HexToAddress(s), nil

	case abi.BytesTy:
		b, err := hexutil.Decode(s)
		if err != nil {
			return nil, fmt.Errorf("invalid bytes %q: %v", s, err)
		}
		return b, nil

	case abi.FixedBytesTy:
		b, err := hexutil.Decode(s)
		if err != nil {
			return nil, fmt.Errorf("invalid bytes %q: %v", s, err)
		}
		if len(b) > t.Size {
			return nil, fmt.Errorf("%d bytes do not fit bytes%d", len(b), t.Size)
		}
		rv := reflect.New(t.GetType()).Elem()
		reflect.Copy(rv, reflect.ValueOf(b))
		return rv.Interface(), nil
	}
	return nil, fmt.Errorf("type %s cannot be given as text", t.String())
}

func checkRange(t abi.Type, n *big.Int) error {
	if t.T == abi.UintTy {
		if n.Sign() < 0 || n.BitLen() > t.Size {
			return fmt.Errorf("%s out of range for uint%d", n, t.Size)
		}
		return nil
	}
	limit := new(big.Int).Lsh(big.NewInt(1), uint(t.Size-1))
	if n.Cmp(limit) >= 0 || n.Cmp(new(big.Int).Neg(limit)) < 0 {
		return fmt.Errorf("%s out of range for int%d", n, t.Size)
	}
	return nil
}
