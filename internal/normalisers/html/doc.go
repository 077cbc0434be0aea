// Package html extracts readable text from HTML slide bodies, stripping
// tags, scripts and styles and decoding entities.
package html
