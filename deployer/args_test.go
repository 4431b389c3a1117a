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
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ctorABI = `[{"type":"constructor","stateMutability":"payable","inputs":[
	{"name":"owner","type":"address"},
	{"name":"supply","type":"uint256"},
	{"name":"decimals","type":"uint8"},
	{"name":"offset","type":"int64"},
	{"name":"open","type":"bool"},
	{"name":"label","type":"string"},
	{"name":"blob","type":"bytes"},
	{"name":"tag","type":"bytes4"}
]}]`

func TestConstructorArgs(t *testing.T) {
	parsed, err := abi.JSON(strings.NewReader(ctorABI))
	require.NoError(t, err)

	args, err := constructorArgs(parsed, []interface{}{
		"0x00000000000000000000000000000000000000aa",
		"1000000000000000000000",
		"18",
		" -5 ",
		"true",
		"hello",
		"0xdeadbeef",
		"0x01020304",
	})
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0xaa"), args[0])
	supply, _ := new(big.Int).SetString("1000000000000000000000", 10)
	assert.Zero(t, supply.Cmp(args[1].(*big.Int)))
	assert.Equal(t, uint8(18), args[2])
	assert.Equal(t, int64(-5), args[3])
	assert.Equal(t, true, args[4])
	assert.Equal(t, "hello", args[5])
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, args[6])
	assert.Equal(t, [4]byte{1, 2, 3, 4}, args[7])

	// The converted values pack.
	_, err = parsed.Pack("", args...)
	require.NoError(t, err)
}

func TestConstructorArgsInvalid(t *testing.T) {
	parsed, err := abi.JSON(strings.NewReader(ctorABI))
	require.NoError(t, err)
	valid := []string{"0x00000000000000000000000000000000000000aa", "1", "1", "1", "true", "s", "0x", "0x01"}

	tests := []struct {
		index int
		value string
	}{
		{0, "0x1234"},
		{1, "-1"},
		{1, "ten"},
		{2, "256"},
		{3, "9223372036854775808"},
		{4, "maybe"},
		{6, "xyz"},
		{7, "0x0102030405"},
	}
	for _, tt := range tests {
		args := make([]interface{}, len(valid))
		for i, v := range valid {
			args[i] = v
		}
		args[tt.index] = tt.value
		_, err := constructorArgs(parsed, args)
		assert.Error(t, err, "argument %d = %q", tt.index, tt.value)
	}

	_, err = constructorArgs(parsed, []interface{}{"0x00000000000000000000000000000000000000aa"})
	assert.ErrorContains(t, err, "takes 8 arguments, got 1")
}

func TestConstructorArgsPassThrough(t *testing.T) {
	parsed, err := abi.JSON(strings.NewReader(ctorABI))
	require.NoError(t, err)
	owner := common.HexToAddress("0x01")
	args, err := constructorArgs(parsed, []interface{}{owner, big.NewInt(1), uint8(1), int64(1), false, "", []byte{}, [4]byte{}})
	require.NoError(t, err)
	assert.Equal(t, owner, args[0])
}
