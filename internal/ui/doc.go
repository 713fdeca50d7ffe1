// Package ui provides the styled, non-interactive terminal output used by
// sensormon's commands: a line spinner for slow steps, tables for port and
// preset listings, and a small branded header.
//
// # Color Scheme
//
//	ColorSuccess   (neon green) - Successful operations
//	ColorError     (red-pink)   - Failures and errors
//	ColorWarning   (amber)      - Warnings and held locks
//	ColorInfo      (cyan)       - Informational messages
//	ColorMuted     (gray)       - Secondary text, timing info
//
// Use DisableColors() to switch to monochrome output (for --no-color flag).
//
// # Symbols
//
//	SymbolSuccess  ✓  Step completed
//	SymbolFail     ✗  Step failed
//	SymbolPending  ○  Idle
//	SymbolComplete ●  Available
//	SymbolLocked   ⊘  Held by another process
package ui
