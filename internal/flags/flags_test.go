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

package flags

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestPathExpansion(t *testing.T) {
	home := HomeDir()
	tests := map[string]string{
		"/home/someuser/tmp": "/home/someuser/tmp",
		"~/tmp":              home + "/tmp",
		"~thisOtherUser/b/":  "~thisOtherUser/b",
		"$DDDXXX/a/b":        "/tmp/a/b",
		"/a/b/":              "/a/b",
		"":                   "",
	}
	t.Setenv("DDDXXX", "/tmp")
	for test, expected := range tests {
		assert.Equal(t, expected, expandPath(test), "input %q", test)
	}
}

func TestDirectoryFlag(t *testing.T) {
	t.Setenv("HOME", "/home/alice")
	dir := &DirectoryFlag{Name: "keystore"}
	var got string
	app := &cli.App{
		Flags: []cli.Flag{dir},
		Action: func(ctx *cli.Context) error {
			got = ctx.String("keystore")
			return nil
		},
	}
	require.NoError(t, app.Run([]string{"app", "--keystore", "~/.auditai/keystore/"}))
	assert.Equal(t, filepath.Clean("/home/alice/.auditai/keystore"), got)
}

func TestAutoEnvVars(t *testing.T) {
	port := &cli.IntFlag{Name: "http.port"}
	trace := &cli.StringFlag{Name: "go-execution-trace"}
	dir := &DirectoryFlag{Name: "keystore"}
	AutoEnvVars([]cli.Flag{port, trace, dir}, "auditai")

	assert.Equal(t, []string{"AUDITAI_HTTP_PORT"}, port.EnvVars)
	assert.Equal(t, []string{"AUDITAI_GO_EXECUTION_TRACE"}, trace.EnvVars)
	assert.Equal(t, []string{"AUDITAI_KEYSTORE"}, dir.EnvVars)

	t.Setenv("AUDITAI_HTTP_PORT", "9000")
	var got int
	app := &cli.App{
		Flags: []cli.Flag{port},
		Action: func(ctx *cli.Context) error {
			got = ctx.Int("http.port")
			return nil
		},
	}
	require.NoError(t, app.Run([]string{"app"}))
	assert.Equal(t, 9000, got)
}

func TestCheckExclusive(t *testing.T) {
	a := &cli.StringFlag{Name: "clef"}
	b := &cli.StringFlag{Name: "keyfile"}
	run := func(args ...string) error {
		app := &cli.App{
			Flags: []cli.Flag{a, b},
			Action: func(ctx *cli.Context) error {
				return CheckExclusive(ctx, a, b)
			},
		}
		return app.Run(append([]string{"app"}, args...))
	}
	assert.NoError(t, run("--clef", "http://localhost:8550"))
	assert.ErrorContains(t, run("--clef", "x", "--keyfile", "y"), "can't be used at the same time")
}
