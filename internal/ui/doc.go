// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for tracking job applications:
//  1. [EntryView] : Sign in with the provider account
//  2. [DashboardView] : Profile summary, spreadsheet status, scan trigger
//  3. [FirstRunView] : Collect the starting point for a first scan
//  4. [ScanView] : Monitor real-time scan progress
//  5. [ResultView] : Display the final scan outcome
//
// Every view is wrapped in a [guard.Guard]: while session verification is in
// flight the placeholder spinner renders, and once the verdict lands the
// guard either admits the view, redirects, or blanks it. The [Model]
// implements bubbletea's standard Init/Update/View pattern; scan progress
// flows through a channel from the Tracker, providing non-blocking status
// reporting while polling.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, q) with
// contextual help displayed via charmbracelet/bubbles/help.
package ui
