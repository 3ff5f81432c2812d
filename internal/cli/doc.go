// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the hrefhelper command line.
//
// Roots come from repeated --root flags, else the config file's roots, else
// the working directory. Every command builds a fresh session over those
// roots; nothing is persisted between runs.
//
// Commands:
//
//	hrefhelper index                 Walk every root and print a summary
//	hrefhelper complete [prefix]     Print matching completions
//	hrefhelper known [path]          Report whether a file is indexed, or list them all
//	hrefhelper activate <path>       Simulate the editor focusing a file
//	hrefhelper serve                 Run the HTTP API for editor plugins
//	hrefhelper shell                 Interactive completion shell
//	hrefhelper pick                  Full-screen picker; prints the chosen href
//	hrefhelper export                Write completions as json, markdown, html
//	hrefhelper config show|init|path|get
//	hrefhelper version
package cli
