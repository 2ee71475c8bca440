package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHighlightCode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "no fences", in: "just text <b>", want: "just text <b>"},
		{
			name: "language block",
			in:   "see:\n```go\nfmt.Println(\"<hi>\")\n```\nthanks",
			want: "see:\n<pre class=\"language-go\"><code>fmt.Println(&quot;&lt;hi&gt;&quot;)</code></pre>\nthanks",
		},
		{
			name: "no language defaults to plaintext",
			in:   "```\nit's & done\n```",
			want: "<pre class=\"language-plaintext\"><code>it&#039;s &amp; done</code></pre>",
		},
		{
			name: "two blocks",
			in:   "```js\na\n``` and ```py\nb\n```",
			want: "<pre class=\"language-js\"><code>a</code></pre> and <pre class=\"language-py\"><code>b</code></pre>",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HighlightCode(tt.in))
		})
	}
}
