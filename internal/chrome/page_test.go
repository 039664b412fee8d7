package chrome

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gustavo-meilus/flowgate/internal/page"
)

func TestJSString_RoundTrips(t *testing.T) {
	inputs := []string{
		"",
		`#username`,
		`button[type="submit"]`,
		`a'b"c`,
		"line\nbreak\ttab",
		`back\slash`,
		`[role="alert"], #flash, .alert`,
		"café ünïcode",
	}
	for _, in := range inputs {
		lit := jsString(in)
		var out string
		require.NoError(t, json.Unmarshal([]byte(lit), &out), "literal %s", lit)
		assert.Equal(t, in, out)
	}
}

func TestJSString_EscapesQuotes(t *testing.T) {
	assert.Equal(t, `"button[type=\"submit\"]"`, jsString(`button[type="submit"]`))
}

func TestVisibleExpr_QuotesSelector(t *testing.T) {
	expr := visibleExpr(`input[name="q"]`)
	assert.Contains(t, expr, `document.querySelector("input[name=\"q\"]")`)
	assert.Contains(t, expr, "getBoundingClientRect")
}

func TestWrap_ClassifiesCauses(t *testing.T) {
	p := &Page{}

	err := p.wrap("click", "#go", 5*time.Second, context.DeadlineExceeded)
	assert.True(t, page.IsTimeout(err))

	err = p.wrap("click", "#go", 5*time.Second, context.Canceled)
	var de *page.DriverError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, page.ErrCodeDetached, de.Code)

	err = p.wrap("click", "#go", 5*time.Second, errors.New("boom"))
	assert.EqualError(t, err, `click "#go": boom`)
}
