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

import "github.com/urfave/cli/v2"

const (
	// AnalysisCategory 是与合约审计服务相关的标志的类别。
	AnalysisCategory = "ANALYSIS"
	// CompilerCategory 是与 Solidity 编译器相关的标志的类别。
	CompilerCategory = "COMPILER"
	// WalletCategory 是与钱包及签名相关的标志的类别。
	WalletCategory = "WALLET"
	// DeployCategory 是与合约部署相关的标志的类别。
	DeployCategory = "DEPLOYMENT"
	// APICategory 是与 HTTP API 相关的标志的类别。
	APICategory = "API"
	// LoggingCategory 是与 Logging and Debugging 相关的标志的类别。
	LoggingCategory = "LOGGING AND DEBUGGING"
	// MetricsCategory 是与 Metrics and Stats 相关的标志的类别。
	MetricsCategory = "METRICS AND STATS"
	// MiscCategory 是与 Miscellaneous 相关的标志的类别。
	MiscCategory = "MISC"
)

func init() {
	cli.HelpFlag.(*cli.BoolFlag).Category = MiscCategory
	cli.VersionFlag.(*cli.BoolFlag).Category = MiscCategory
}
