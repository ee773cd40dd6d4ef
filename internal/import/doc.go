// EFTP Registry - Technical and Vocational Education Data Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eftp-registry

// Package locimport bulk-loads RENALOC location data from spreadsheets.
//
// # Sources
//
// Two formats are read, selected by file extension:
//
//   - .xlsx: the first sheet of the workbook (xuri/excelize)
//   - .csv: comma or semicolon separated, UTF-8 with optional BOM
//
// The first row is the header. Column names are matched case-insensitively.
//
// # Columns
//
// Every level requires code and nom. Lower levels also require the parent
// code column for their level:
//
//	regions       code, nom
//	departements  code, nom, region_code
//	communes      code, nom, departement_code [, type]
//	quartiers     code, nom, commune_code
//
// # Atomicity
//
// All rows of a run are upserted through the location registry inside one
// transaction. The first failing row aborts the run and nothing is
// persisted. The returned error names the spreadsheet line. Registry
// observers are notified only once the whole batch has committed.
package locimport
