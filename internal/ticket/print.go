package ticket

import (
	"fmt"
	"html"
)

// printPage wraps the ticket text in a minimal standalone document for the
// browser print surface. Monospace, fixed max width, no interactivity beyond
// triggering the native print dialog on load.
const printPage = `<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="utf-8">
<title>Ticket de cocina</title>
<style>
body { margin: 0; padding: 16px; }
pre {
  font-family: "Courier New", monospace;
  font-size: 12px;
  line-height: 1.2;
  max-width: %dch;
  margin: 0 auto;
  white-space: pre;
}
</style>
</head>
<body>
<pre>%s</pre>
<script>window.onload = function () { window.print(); };</script>
</body>
</html>
`

// PrintDocument renders the ticket text verbatim into the printable HTML
// page. Like Render, it is pure and total.
func PrintDocument(text string) string {
	return fmt.Sprintf(printPage, Width, html.EscapeString(text))
}
