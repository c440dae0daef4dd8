package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-journal-api/internal/models"
	appErrors "github.com/noah-isme/sma-journal-api/pkg/errors"
)

const (
	metaKey      = "response_meta"
	metaStartKey = "response_meta_start"
)

// Envelope is the wire contract every endpoint responds with. Exactly one of
// Data or Error is set; Pagination and Meta ride along when available.
type Envelope struct {
	Data       interface{}            `json:"data,omitempty"`
	Error      *appErrors.Error       `json:"error,omitempty"`
	Pagination *models.Pagination     `json:"pagination,omitempty"`
	Meta       map[string]interface{} `json:"meta,omitempty"`
}

// SeedMeta marks the start of request processing and prepares the metadata
// map. Usually installed once by the response-meta middleware.
func SeedMeta(c *gin.Context) {
	c.Set(metaStartKey, time.Now())
	c.Set(metaKey, map[string]interface{}{})
}

// AddMeta stores a key on the request's metadata map. A no-op when SeedMeta
// never ran, which keeps bare test contexts working.
func AddMeta(c *gin.Context, key string, value interface{}) {
	if c == nil {
		return
	}
	if raw, exists := c.Get(metaKey); exists {
		if meta, ok := raw.(map[string]interface{}); ok {
			meta[key] = value
		}
	}
}

// JSON writes a success envelope. Seeded metadata is attached automatically
// with the measured processing time; an explicit meta argument wins on key
// conflicts. Responses are marked non-cacheable because journal listings
// change underneath generation and deletion runs.
func JSON(c *gin.Context, status int, data interface{}, pagination *models.Pagination, meta ...map[string]interface{}) {
	noStore(c)
	envelope := Envelope{Data: data, Pagination: pagination, Meta: collectMeta(c)}
	if len(meta) > 0 && meta[0] != nil {
		if envelope.Meta == nil {
			envelope.Meta = map[string]interface{}{}
		}
		for k, v := range meta[0] {
			envelope.Meta[k] = v
		}
	}
	c.JSON(status, envelope)
}

// Created writes a 201 envelope around the freshly created resource.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data, nil)
}

// Error converts err to the shared error shape and writes it with its
// mapped HTTP status.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	noStore(c)
	c.JSON(appErr.Status, Envelope{Error: appErr, Meta: collectMeta(c)})
}

// NoContent writes an empty 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}

func collectMeta(c *gin.Context) map[string]interface{} {
	raw, exists := c.Get(metaKey)
	if !exists {
		return nil
	}
	meta, ok := raw.(map[string]interface{})
	if !ok {
		return nil
	}
	out := make(map[string]interface{}, len(meta)+1)
	for k, v := range meta {
		out[k] = v
	}
	if rawStart, exists := c.Get(metaStartKey); exists {
		if start, ok := rawStart.(time.Time); ok {
			out["processing_time_ms"] = time.Since(start).Milliseconds()
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
