// Package ui implements an interactive terminal interface for the playlist page using bubbletea's Elm architecture.
//
// The [Model] is a thin view over an [app.Controller]: every key press is translated into a controller
// operation and View renders the controller's current [app.Page] snapshot. Backend calls (session check,
// playlist reload, transfer submission) run as [tea.Cmd]s and report back through the Msg union type.
//
// Keyboard navigation uses vim-style bindings (j/k) with contextual help displayed via charmbracelet/bubbles/help.
// Typing / opens a fuzzy filter over playlist names.
package ui
