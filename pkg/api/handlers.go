package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ssargent/dbkey/pkg/keycodec"
	"github.com/ssargent/dbkey/pkg/storage"
)

const defaultScanLimit = 1000

// handleHealth godoc
//
//	@Summary		Health check
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	APIResponse
//	@Security		ApiKeyAuth
//	@Router			/health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	sendSuccess(w, map[string]string{"status": "healthy", "key": s.desc.Name()})
}

// handleSchema godoc
//
//	@Summary		Describe the key type
//	@Description	List the fields of the key with offsets, sizes and bounds
//	@Tags			keys
//	@Produce		json
//	@Success		200	{object}	APIResponse{data=SchemaResponse}
//	@Security		ApiKeyAuth
//	@Router			/schema [get]
func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	resp := SchemaResponse{
		Name:         s.desc.Name(),
		Width:        s.desc.Width(),
		CustomBounds: s.desc.HasCustomBounds(),
		Fields:       make([]FieldInfo, 0, s.desc.NumFields()),
	}
	for _, f := range s.desc.Fields() {
		resp.Fields = append(resp.Fields, FieldInfo{
			Index:   f.Index,
			Name:    f.Name,
			Display: f.DisplayName,
			Type:    f.Type.String(),
			Offset:  f.Offset,
			Size:    f.Size(),
			Default: f.Default.String(),
			Min:     f.Min.String(),
			Max:     f.Max.String(),
		})
	}
	sendSuccess(w, resp)
}

// handleBounds godoc
//
//	@Summary	Default, smallest and largest keys
//	@Tags		keys
//	@Produce	json
//	@Success	200	{object}	APIResponse{data=BoundsResponse}
//	@Security	ApiKeyAuth
//	@Router		/bounds [get]
func (s *Server) handleBounds(w http.ResponseWriter, r *http.Request) {
	sendSuccess(w, BoundsResponse{
		Default: s.describe(s.desc.Default()),
		Min:     s.describe(s.desc.MinKey()),
		Max:     s.describe(s.desc.MaxKey()),
	})
}

// handleEncode godoc
//
//	@Summary		Encode a key
//	@Description	Build a key from field literals; omitted fields take their defaults
//	@Tags			keys
//	@Accept			json
//	@Produce		json
//	@Param			request	body		EncodeRequest	true	"Field literals"
//	@Success		200		{object}	APIResponse{data=KeyResponse}
//	@Failure		400		{object}	APIResponse
//	@Security		ApiKeyAuth
//	@Router			/keys/encode [post]
func (s *Server) handleEncode(w http.ResponseWriter, r *http.Request) {
	var req EncodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.metrics.RecordCodecOperation("encode", false)
		sendError(w, "Invalid JSON in request body", http.StatusBadRequest)
		return
	}
	key, err := s.desc.FromLiterals(req.Fields)
	if err != nil {
		s.metrics.RecordCodecOperation("encode", false)
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.metrics.RecordCodecOperation("encode", true)
	sendSuccess(w, s.describe(key))
}

// handleDecode godoc
//
//	@Summary		Decode a key
//	@Description	Decode hex into field values; short input is zero padded, long input truncated
//	@Tags			keys
//	@Accept			json
//	@Produce		json
//	@Param			request	body		DecodeRequest	true	"Hex key"
//	@Success		200		{object}	APIResponse{data=KeyResponse}
//	@Failure		400		{object}	APIResponse
//	@Security		ApiKeyAuth
//	@Router			/keys/decode [post]
func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	var req DecodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.metrics.RecordCodecOperation("decode", false)
		sendError(w, "Invalid JSON in request body", http.StatusBadRequest)
		return
	}
	key, err := s.desc.ParseHex(req.Hex)
	if err != nil {
		s.metrics.RecordCodecOperation("decode", false)
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.metrics.RecordCodecOperation("decode", true)
	sendSuccess(w, s.describe(key))
}

// urlKey parses the {key} path parameter. Path keys must be exactly the key
// width; padding applies only to explicit decode requests.
func (s *Server) urlKey(r *http.Request) (keycodec.Key, error) {
	return s.desc.ParseHexExact(chi.URLParam(r, "key"))
}

// handlePut godoc
//
//	@Summary	Put a value
//	@Tags		kv
//	@Accept		octet-stream
//	@Produce	json
//	@Param		key		path		string	true	"Hex key of exactly the key width"
//	@Param		body	body		[]byte	true	"Value"
//	@Success	200		{object}	APIResponse{data=KeyResponse}
//	@Failure	400		{object}	APIResponse
//	@Failure	413		{object}	APIResponse
//	@Security	ApiKeyAuth
//	@Router		/kv/{key} [put]
func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	key, err := s.urlKey(r)
	if err != nil {
		s.metrics.RecordStoreOperation("put", false, time.Since(start))
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.config.MaxValueSize))
	if err != nil {
		s.metrics.RecordStoreOperation("put", false, time.Since(start))
		sendError(w, "Failed to read request body", http.StatusRequestEntityTooLarge)
		return
	}

	if err := s.store.Put(key, body); err != nil {
		s.metrics.RecordStoreOperation("put", false, time.Since(start))
		sendError(w, "Failed to put key-value: "+err.Error(), statusFor(err))
		return
	}
	s.metrics.RecordStoreOperation("put", true, time.Since(start))
	sendSuccess(w, s.describe(key))
}

// handleGet godoc
//
//	@Summary	Get a value
//	@Tags		kv
//	@Produce	json
//	@Param		key	path		string	true	"Hex key of exactly the key width"
//	@Success	200	{object}	APIResponse{data=KVItem}
//	@Failure	400	{object}	APIResponse
//	@Failure	404	{object}	APIResponse
//	@Security	ApiKeyAuth
//	@Router		/kv/{key} [get]
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	key, err := s.urlKey(r)
	if err != nil {
		s.metrics.RecordStoreOperation("get", false, time.Since(start))
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	value, err := s.store.Get(key)
	if err != nil {
		s.metrics.RecordStoreOperation("get", false, time.Since(start))
		sendError(w, err.Error(), statusFor(err))
		return
	}
	s.metrics.RecordStoreOperation("get", true, time.Since(start))
	sendSuccess(w, KVItem{Key: s.describe(key), Value: value})
}

// handleDelete godoc
//
//	@Summary	Delete a value
//	@Tags		kv
//	@Produce	json
//	@Param		key	path		string	true	"Hex key of exactly the key width"
//	@Success	200	{object}	APIResponse
//	@Failure	400	{object}	APIResponse
//	@Security	ApiKeyAuth
//	@Router		/kv/{key} [delete]
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	key, err := s.urlKey(r)
	if err != nil {
		s.metrics.RecordStoreOperation("delete", false, time.Since(start))
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.store.Delete(key); err != nil {
		s.metrics.RecordStoreOperation("delete", false, time.Since(start))
		sendError(w, "Failed to delete key: "+err.Error(), statusFor(err))
		return
	}
	s.metrics.RecordStoreOperation("delete", true, time.Since(start))
	sendSuccess(w, map[string]string{"deleted": key.String()})
}

// handleScan lists pairs with from <= key <= to. Missing bounds default to
// the smallest and largest key; short bounds are zero padded.
//
//	@Summary	Scan a key range
//	@Tags		kv
//	@Produce	json
//	@Param		from	query		string	false	"Inclusive lower bound as hex"
//	@Param		to		query		string	false	"Inclusive upper bound as hex"
//	@Param		limit	query		int		false	"Maximum number of items"	default(1000)
//	@Success	200		{object}	APIResponse{data=ScanResponse}
//	@Failure	400		{object}	APIResponse
//	@Security	ApiKeyAuth
//	@Router		/kv [get]
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	q := r.URL.Query()

	bound := func(name string, def keycodec.Key) (keycodec.Key, error) {
		if v := q.Get(name); v != "" {
			return s.desc.ParseHex(v)
		}
		return def, nil
	}
	from, err := bound("from", s.desc.MinKey())
	if err != nil {
		sendError(w, "from: "+err.Error(), http.StatusBadRequest)
		return
	}
	to, err := bound("to", s.desc.MaxKey())
	if err != nil {
		sendError(w, "to: "+err.Error(), http.StatusBadRequest)
		return
	}
	limit := defaultScanLimit
	if v := q.Get("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil || limit <= 0 {
			sendError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
	}

	resp := ScanResponse{Items: []KVItem{}}
	err = s.store.Scan(from, to, func(k keycodec.Key, v []byte) bool {
		if len(resp.Items) == limit {
			resp.More = true
			return false
		}
		resp.Items = append(resp.Items, KVItem{Key: s.describe(k), Value: v})
		return true
	})
	if err != nil {
		s.metrics.RecordStoreOperation("scan", false, time.Since(start))
		sendError(w, "Failed to scan: "+err.Error(), statusFor(err))
		return
	}
	s.metrics.RecordStoreOperation("scan", true, time.Since(start))
	s.metrics.RecordScan(len(resp.Items))
	sendSuccess(w, resp)
}

func (s *Server) describe(k keycodec.Key) KeyResponse {
	resp := KeyResponse{
		Hex:      k.Render(keycodec.FormatLowerHex),
		Compact:  k.Render(keycodec.FormatCompact),
		Rendered: k.Render(s.config.Format),
		Fields:   make([]FieldValue, 0, s.desc.NumFields()),
	}
	for i, v := range k.Values() {
		resp.Fields = append(resp.Fields, FieldValue{
			Name:  s.desc.Field(i).Name,
			Type:  v.Type().String(),
			Value: v.String(),
		})
	}
	return resp
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrDescriptorMismatch):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrClosed):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
