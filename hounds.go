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

// Package hounds crawls a website in a real browser and reports the
// JavaScript errors and console messages its pages produce.
//
// A hunt starts at a seed URL, visits one page at a time, follows the links it
// accepts (same-origin by default) and delivers every uncaught page error and
// every console message at or above a configured level as an Event:
//
//	hunt := hounds.Release(&hounds.Config{URL: "http://localhost:8080"})
//	defer hunt.Close()
//	err := hunt.Drain(ctx, func(ev hounds.Event) error {
//		fmt.Println(ev.PageURL(), ev)
//		return nil
//	})
//
// Nothing is launched until the hunt is first pulled. A hunt ends once every
// accepted link has been visited, the follow budget is spent or the timeout
// has passed; any browser failure ends it with a single error.
package hounds

// Version is the hounds release.
const Version = "0.3.0"
