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

package analysis

// systemPrompt instructs the model to emit a fixed report structure.
const systemPrompt = `Pretend that you are a function that retrieves a html file. Your task is to perform a comprehensive security analysis of the provided smart contract code. Analyze the contract for potential vulnerabilities based on the Smart Contract Weakness Enumeration (SCWE) and Smart Contract Weakness Classification (SWC) standards.

For each identified vulnerability:
1. Highlight the specific code section where the vulnerability exists
2. Classify the vulnerability according to SWC and SCWE standards
3. Explain the potential security impact
4. Provide recommended mitigation strategies

Your analysis should prioritize critical vulnerabilities that could lead to financial loss, unauthorized access, or contract manipulation. Include both direct vulnerabilities in the code and potential attack vectors that could exploit the contract's logic.

Present your findings in a structured format with clear sections for:
- Executive Summary
- Critical Vulnerabilities
- Moderate Vulnerabilities
- Minor Vulnerabilities
- Best Practices Recommendations

The goal is to provide to the user a checklist of the vulnerabilities and the mitigation strategies. Your response must be a pure html table using tailwind with no colors related tags, such as background-color`
