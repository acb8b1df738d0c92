package handlers

import (
	"net/http"

	"github.com/m1z23r/drift/pkg/drift"
)

// DocsHandler serves the rendered OpenAPI document.
type DocsHandler struct {
	document []byte
}

func NewDocsHandler(document []byte) *DocsHandler {
	return &DocsHandler{document: document}
}

func (h *DocsHandler) OpenAPI(c *drift.Context) {
	c.Response.Header().Set("Content-Type", "application/json")
	c.Response.Header().Set("Cache-Control", "public, max-age=300")
	c.Response.WriteHeader(http.StatusOK)
	_, _ = c.Response.Write(h.document)
}
