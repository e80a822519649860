package blogservice

import "regexp"

var scriptTagRX = regexp.MustCompile(`(?is)<\s*script[^>]*>(.*?)<\s*/\s*script\s*>`)

// sanitizeHTML strips script elements from user or model supplied HTML.
func sanitizeHTML(html string) string {
	return scriptTagRX.ReplaceAllString(html, "")
}
