// Copyright 2025 Agentic World, LLC (Sherin Thomas)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command hounds crawls websites in a browser and reports the JavaScript
// errors and console messages their pages produce.
//
// Usage:
//
//	hounds <command> [flags]
//
// Commands:
//
//	hunt      Crawl a site and print its errors
//	list      List recorded hunts or projects
//	findings  Show the findings of a recorded hunt
//	serve     Run the REST API and the MCP server
//	mcp       Serve MCP over stdio
//	version   Show version information
package main

func main() {
	Execute()
}
