// Package normalisers turns formatted slide bodies into the plain text the
// facet index matches against. Catalogs name a story's slide format; each
// format has a normaliser in its own subpackage.
package normalisers
