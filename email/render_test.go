package email

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	assert := assert.New(t)

	html, err := NewRenderer("SoniCart").Render("Order Update - SHIPPED", "Your order has shipped.", "Ada Lovelace")
	require.NoError(t, err)

	assert.True(strings.HasPrefix(html, "<!DOCTYPE html>"))
	assert.Contains(html, "<title>Order Update - SHIPPED</title>")
	assert.Contains(html, "Hi Ada Lovelace,")
	assert.Contains(html, "Your order has shipped.")
	assert.Contains(html, "SoniCart")
}

func TestRenderIsDeterministic(t *testing.T) {
	renderer := NewRenderer("SoniCart")

	first, err := renderer.Render("Back in Stock - Kettle", "It's back!\nGrab one.", "Ada")
	require.NoError(t, err)
	second, err := renderer.Render("Back in Stock - Kettle", "It's back!\nGrab one.", "Ada")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRenderStripsUnsafeMarkup(t *testing.T) {
	assert := assert.New(t)

	html, err := NewRenderer("SoniCart").Render(
		"<b>Price Drop</b>",
		`Now <strong>20% off</strong><script>alert("x")</script>`,
		`<img src=x onerror=alert(1)>Eve`,
	)
	require.NoError(t, err)

	assert.NotContains(html, "<script>")
	assert.NotContains(html, "onerror")
	assert.Contains(html, "<strong>20% off</strong>", "basic formatting is kept in the message")
	assert.Contains(html, "<title>Price Drop</title>", "markup is removed from the title")
	assert.Contains(html, "Hi Eve,")
}

func TestRenderPreservesLineBreaks(t *testing.T) {
	html, err := NewRenderer("SoniCart").Render("Title", "line one\nline two", "Ada")
	require.NoError(t, err)
	assert.Contains(t, html, "line one<br>line two")
}

func TestRenderDoesNotDoubleEscape(t *testing.T) {
	html, err := NewRenderer("SoniCart").Render("Salt & Pepper", "message", "O'Brien")
	require.NoError(t, err)
	assert.Contains(t, html, "<title>Salt &amp; Pepper</title>")
	assert.Contains(t, html, "Hi O&#39;Brien,")
}
