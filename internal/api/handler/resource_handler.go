package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/astroline/admin-gateway/internal/core/domain"
	"github.com/astroline/admin-gateway/internal/core/ports"
)

// ResourceHandler proxies one dashboard collection (products, orders, faqs,
// astrologers, benefits, reading services/packages) to the platform API.
// Payloads pass through verbatim in both directions; the platform owns the
// schemas. The handler's job is the session: every call goes out with the
// credential bound to the operator's session at dispatch time.
type ResourceHandler struct {
	client ports.APIClient
	audit  ports.AuditSink
	name   string
	path   string
}

func NewResourceHandler(client ports.APIClient, audit ports.AuditSink, name, path string) *ResourceHandler {
	return &ResourceHandler{client: client, audit: audit, name: name, path: path}
}

// List proxies GET with the caller's query string untouched.
func (h *ResourceHandler) List(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}

	var out json.RawMessage
	if err := h.client.Get(c.Request().Context(), session.Token, h.path, c.QueryParams(), &out); err != nil {
		return err
	}
	return respondRaw(c, http.StatusOK, out)
}

// Create proxies POST.
func (h *ResourceHandler) Create(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}
	body, err := readJSONBody(c)
	if err != nil {
		return err
	}

	var out json.RawMessage
	if err := h.client.Post(c.Request().Context(), session.Token, h.path, body, &out); err != nil {
		return err
	}

	h.recordMutation(c, session, domain.AuditCreate, "")
	return respondRaw(c, http.StatusCreated, out)
}

// Update proxies PUT /:id.
func (h *ResourceHandler) Update(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}
	body, err := readJSONBody(c)
	if err != nil {
		return err
	}

	id := c.Param("id")
	var out json.RawMessage
	if err := h.client.Put(c.Request().Context(), session.Token, h.path+"/"+url.PathEscape(id), body, &out); err != nil {
		return err
	}

	h.recordMutation(c, session, domain.AuditUpdate, id)
	return respondRaw(c, http.StatusOK, out)
}

// Delete proxies DELETE /:id.
func (h *ResourceHandler) Delete(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}

	id := c.Param("id")
	var out json.RawMessage
	if err := h.client.Delete(c.Request().Context(), session.Token, h.path+"/"+url.PathEscape(id), &out); err != nil {
		return err
	}

	h.recordMutation(c, session, domain.AuditDelete, id)
	return respondRaw(c, http.StatusOK, out)
}

func (h *ResourceHandler) recordMutation(c echo.Context, session *domain.Session, action, id string) {
	actor := ""
	if session.User != nil {
		actor = session.User.Email
	}
	h.audit.Enqueue(domain.AuditEntry{
		Actor:     actor,
		Action:    action,
		Resource:  h.name,
		Detail:    id,
		IP:        c.RealIP(),
		CreatedAt: time.Now().UTC(),
	})
}

func readJSONBody(c echo.Context) (json.RawMessage, error) {
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "unreadable payload")
	}
	if len(raw) == 0 || !json.Valid(raw) {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return json.RawMessage(raw), nil
}

func respondRaw(c echo.Context, status int, raw json.RawMessage) error {
	if len(raw) == 0 {
		return c.NoContent(status)
	}
	return c.JSONBlob(status, raw)
}
