package api

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ssargent/dbkey/pkg/keycodec"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Port   int
	Bind   string
	APIKey string // empty disables authentication
	// Format selects the "rendered" form of keys in responses.
	Format keycodec.Format
	// RequestLog enables chi's request logger.
	RequestLog bool
	// Registry receives the server's metrics. Nil creates a private registry.
	Registry *prometheus.Registry
	// MaxValueSize caps request bodies of PUT /kv. Zero means 1 MiB.
	MaxValueSize int64
}

// FieldValue is one decoded field of a key.
type FieldValue struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

// KeyResponse describes an encoded key.
type KeyResponse struct {
	Hex      string       `json:"hex"`
	Compact  string       `json:"compact"`
	Rendered string       `json:"rendered"`
	Fields   []FieldValue `json:"fields"`
}

// FieldInfo is one row of the descriptor table.
type FieldInfo struct {
	Index   int    `json:"index"`
	Name    string `json:"name"`
	Display string `json:"display"`
	Type    string `json:"type"`
	Offset  int    `json:"offset"`
	Size    int    `json:"size"`
	Default string `json:"default"`
	Min     string `json:"min"`
	Max     string `json:"max"`
}

// SchemaResponse describes the key type served.
type SchemaResponse struct {
	Name         string      `json:"name"`
	Width        int         `json:"width"`
	CustomBounds bool        `json:"custom_bounds"`
	Fields       []FieldInfo `json:"fields"`
}

// BoundsResponse holds the default, smallest and largest keys.
type BoundsResponse struct {
	Default KeyResponse `json:"default"`
	Min     KeyResponse `json:"min"`
	Max     KeyResponse `json:"max"`
}

// EncodeRequest supplies field literals by name. Omitted fields take defaults.
type EncodeRequest struct {
	Fields map[string]string `json:"fields"`
}

// DecodeRequest carries a hex key. Short input is zero padded and long input
// truncated to the key width.
type DecodeRequest struct {
	Hex string `json:"hex"`
}

// KVItem is a stored pair. Value is base64 in JSON.
type KVItem struct {
	Key   KeyResponse `json:"key"`
	Value []byte      `json:"value"`
}

// ScanResponse lists the pairs of a range scan in key order.
type ScanResponse struct {
	Items []KVItem `json:"items"`
	More  bool     `json:"more"`
}
