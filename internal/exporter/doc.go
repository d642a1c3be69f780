// Package exporter persists cleaned tables and cleaning reports.
//
// # Formats
//
//   - CSV with a UTF-8 BOM so spreadsheet tools decode Korean and
//     currency glyphs correctly
//   - JSON envelopes carrying every report of a run plus generation
//     metadata
//   - XLSX workbooks with one sheet per report
//
// All writers resolve file names against the exporter's base directory,
// create it on demand and overwrite existing files.
package exporter
