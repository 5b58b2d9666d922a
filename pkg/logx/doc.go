// Package logx configures minewatch's structured logging.
//
// This repo uses a small wrapper (logx.Logger) on top of zerolog to keep:
//   - Console output readable (short timestamp + short caller)
//   - File output JSON-structured
//
// Console output goes to stderr: when the MCP host is enabled, stdout
// carries the protocol stream and must stay clean.
package logx
