package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripHTML(t *testing.T) {
	assert.Equal(t, "alert(1) oi", StripHTML("<script>alert(1)</script> oi"))
	assert.Equal(t, "x", StripHTML("&lt;b&gt;x&lt;/b&gt;"))
	assert.Equal(t, "Silva & Filhos", StripHTML("Silva &amp; Filhos"))
}

func TestTextCollapsesBlanksPerLine(t *testing.T) {
	assert.Equal(t, "Ligar amanhã\nfalar com Ana", Text("  Ligar   amanhã \n\tfalar  com <i>Ana</i> "))
}

func TestTextPtr(t *testing.T) {
	assert.Nil(t, TextPtr(nil))
	in := " <b>Acme</b> "
	assert.Equal(t, "Acme", *TextPtr(&in))
}
