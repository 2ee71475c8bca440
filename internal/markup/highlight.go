// Package markup renders post bodies for the API. Fenced code blocks
// (```lang\n...```) become <pre class="language-lang"><code>...</code></pre>
// with the code HTML-escaped; syntax colouring happens in the browser.
package markup

import (
	"html"
	"regexp"
	"strings"
)

var codeBlock = regexp.MustCompile("(?s)```([a-z]*)\n(.*?)```")

// HighlightCode rewrites every fenced code block in content. Text outside the
// fences is returned unchanged.
func HighlightCode(content string) string {
	if content == "" {
		return ""
	}
	return codeBlock.ReplaceAllStringFunc(content, func(block string) string {
		m := codeBlock.FindStringSubmatch(block)
		lang := m[1]
		if lang == "" {
			lang = "plaintext"
		}
		return `<pre class="language-` + lang + `"><code>` + escape(strings.TrimSpace(m[2])) + `</code></pre>`
	})
}

var entities = strings.NewReplacer("&#34;", "&quot;", "&#39;", "&#039;")

// escape matches the entity set the web client expects.
func escape(s string) string {
	return entities.Replace(html.EscapeString(s))
}
