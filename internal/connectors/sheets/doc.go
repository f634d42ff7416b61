// Package sheets implements the batch source backed by a Google Sheets
// spreadsheet of token references. Values are read through the Sheets
// API when a Google API key is configured, and through the public CSV
// export endpoint otherwise.
package sheets
