// Package markdown reduces Markdown slide bodies to plain text.
package markdown
