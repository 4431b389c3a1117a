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
	"fmt"
	"os"
	"strings"

	"github.com/sunyihoo/auditai/internal/version"
	"github.com/urfave/cli/v2"
)

// usecolor defines whether the CLI help should use colored output or normal dumb
// colorless terminal formatting.
var usecolor = os.Getenv("TERM") != "dumb"

// NewApp creates an app with sane defaults.
func NewApp(usage string) *cli.App {
	git, _ := version.VCS()
	app := cli.NewApp()
	app.EnableBashCompletion = true
	app.Version = version.WithCommit(git.Commit, git.Date)
	app.Usage = usage
	app.Copyright = "Copyright 2026 The auditai Authors"
	app.Before = func(ctx *cli.Context) error {
		CheckEnvVars(ctx, app.Flags, "AUDITAI")
		return nil
	}
	if usecolor {
		cli.AppHelpTemplate = strings.ReplaceAll(cli.AppHelpTemplate, "{{.Name}}", "\u001b[1m{{.Name}}\u001b[0m")
	}
	return app
}

// Merge merges the given flag slices.
func Merge(groups ...[]cli.Flag) []cli.Flag {
	var ret []cli.Flag
	for _, group := range groups {
		ret = append(ret, group...)
	}
	return ret
}

// CheckEnvVars iterates over all the environment variables and checks if any of
// them look like a CLI flag but is not consumed. This can be used to detect
// typos in environment variable names.
func CheckEnvVars(ctx *cli.Context, flags []cli.Flag, prefix string) {
	known := make(map[string]string)
	for _, f := range flags {
		docflag, ok := f.(cli.DocGenerationFlag)
		if !ok {
			continue
		}
		for _, envVar := range docflag.GetEnvVars() {
			known[envVar] = f.Names()[0]
		}
	}
	keyvals := os.Environ()
	for _, keyval := range keyvals {
		key := strings.SplitN(keyval, "=", 2)[0]
		if !strings.HasPrefix(key, prefix+"_") {
			continue
		}
		if _, ok := known[key]; !ok {
			fmt.Fprintf(os.Stderr, "Unknown environment variable %s\n", key)
		}
	}
}

// CheckExclusive verifies that only a single instance of the provided flags was
// set by the user.
func CheckExclusive(ctx *cli.Context, flags ...cli.Flag) error {
	var set []string
	for _, flag := range flags {
		name := flag.Names()[0]
		if ctx.IsSet(name) {
			set = append(set, "--"+name)
		}
	}
	if len(set) > 1 {
		return fmt.Errorf("flags %v can't be used at the same time", strings.Join(set, ", "))
	}
	return nil
}

// AutoEnvVars extends the given flags with environment variables derived from
// the flag name: prefix, an underscore and the upper-cased name with dots and
// dashes replaced, e.g. --http.port -> AUDITAI_HTTP_PORT.
func AutoEnvVars(flags []cli.Flag, prefix string) {
	for _, flag := range flags {
		envvar := strings.ToUpper(prefix + "_" + strings.ReplaceAll(strings.ReplaceAll(flag.Names()[0], ".", "_"), "-", "_"))

		switch flag := flag.(type) {
		case *cli.StringFlag:
			flag.EnvVars = append(flag.EnvVars, envvar)
		case *cli.StringSliceFlag:
			flag.EnvVars = append(flag.EnvVars, envvar)
		case *cli.BoolFlag:
			flag.EnvVars = append(flag.EnvVars, envvar)
		case *cli.IntFlag:
			flag.EnvVars = append(flag.EnvVars, envvar)
		case *cli.Int64Flag:
			flag.EnvVars = append(flag.EnvVars, envvar)
		case *cli.Uint64Flag:
			flag.EnvVars = append(flag.EnvVars, envvar)
		case *cli.DurationFlag:
			flag.EnvVars = append(flag.EnvVars, envvar)
		case *cli.PathFlag:
			flag.EnvVars = append(flag.EnvVars, envvar)
		case *DirectoryFlag:
			flag.EnvVars = append(flag.EnvVars, envvar)
		}
	}
}
