package htmlsanitize_test

import (
	"strings"
	"testing"

	"yatube/app/htmlsanitize"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	assert.Equal(t, "", htmlsanitize.Sanitize(""))
	assert.Equal(t, "Тестовый текст", htmlsanitize.Sanitize("Тестовый текст"))
	assert.Equal(t, "Hello", htmlsanitize.Sanitize("<p>Hello</p><script>alert('xss')</script>"))
	assert.Equal(t, "Click", htmlsanitize.Sanitize(`<a href="javascript:alert('xss')">Click</a>`))
	assert.Equal(t, "bold move", htmlsanitize.Sanitize(`<b onclick="x()">bold</b> <img src=x onerror=alert(1)>move`))
	assert.Equal(t, "a &lt; b &amp;&amp; c", htmlsanitize.Sanitize("a < b && c"))
}

func TestLinebreaks(t *testing.T) {
	out := string(htmlsanitize.Linebreaks("first\r\nsecond<script>x</script>"))
	assert.Equal(t, 1, strings.Count(out, "<br>"))
	assert.True(t, strings.HasPrefix(out, "first<br>\nsecond"))
	assert.NotContains(t, out, "<script>")
}
