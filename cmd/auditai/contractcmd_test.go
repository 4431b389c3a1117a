// Copyright 2026 The auditai Authors
// This file is part of auditai.
//
// auditai is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// auditai is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with auditai. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sunyihoo/auditai/compiler"
)

// fakeSolc writes a shell script that answers --version and replays the
// canned standard-json output of the SimpleStorage sample.
func fakeSolc(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script compiler stand-in needs a POSIX shell")
	}
	canned, err := filepath.Abs("../../compiler/testdata/simplestorage.json")
	require.NoError(t, err)

	script := fmt.Sprintf(`#!/bin/sh
if [ "$1" = "--version" ]; then
	echo "Version: 0.8.26+commit.8a97fa7a.Linux.g++"
	exit 0
fi
cat >/dev/null
cat %q
`, canned)
	path := filepath.Join(t.TempDir(), "solc")
	require.NoError(t, os.WriteFile(path, []byte(script), 0755))
	return path
}

func TestCompileCommand(t *testing.T) {
	solc := fakeSolc(t)
	out := filepath.Join(t.TempDir(), "artifact.json")
	require.NoError(t, app.Run([]string{"auditai", "compile", "--solc", solc, "--out", out}))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var art compiler.Artifact
	require.NoError(t, json.Unmarshal(data, &art))
	assert.Equal(t, "SimpleStorage", art.Name)
	assert.NotEmpty(t, art.Bytecode)
	assert.Equal(t, "0.8.26+commit.8a97fa7a", art.Info.CompilerVersion)
	assert.Equal(t, compiler.SourceHash(art.Info.Source), art.SourceHash)
}

func TestCompileCommandUnknownContract(t *testing.T) {
	solc := fakeSolc(t)
	err := app.Run([]string{"auditai", "compile", "--solc", solc, "--contract", "Missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Missing")
}

func TestCompileCommandMissingFile(t *testing.T) {
	err := app.Run([]string{"auditai", "compile", filepath.Join(t.TempDir(), "nope.sol")})
	require.Error(t, err)
}
