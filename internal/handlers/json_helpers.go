package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"reflect"

	"skill-assessment/internal/service"
)

var marshalerType = reflect.TypeFor[json.Marshaler]()

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// JSONResponse writes data with the given status and ensures slices and maps are never null.
//
// Always use this instead of json.NewEncoder(w).Encode(): clients expect [] and {} for
// empty collections, and nil slices would otherwise encode as null.
func JSONResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(normalizeSlices(data)); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// normalizeSlices returns a copy of data in which nil slices and maps are empty
func normalizeSlices(data any) any {
	if data == nil {
		return nil
	}
	return normalizeValue(reflect.ValueOf(data)).Interface()
}

func normalizeValue(v reflect.Value) reflect.Value {
	// custom encoders (time.Time, json.RawMessage, ...) own their representation
	if v.Type().Implements(marshalerType) {
		return v
	}

	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return v
		}
		out := reflect.New(v.Type().Elem())
		out.Elem().Set(normalizeValue(v.Elem()))
		return out

	case reflect.Interface:
		if v.IsNil() {
			return v
		}
		out := reflect.New(v.Type()).Elem()
		out.Set(normalizeValue(v.Elem()))
		return out

	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return v
		}
		if v.IsNil() {
			return reflect.MakeSlice(v.Type(), 0, 0)
		}
		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := range v.Len() {
			out.Index(i).Set(normalizeValue(v.Index(i)))
		}
		return out

	case reflect.Map:
		out := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), normalizeValue(iter.Value()))
		}
		return out

	case reflect.Struct:
		out := reflect.New(v.Type()).Elem()
		for i := range v.NumField() {
			if !v.Type().Field(i).IsExported() {
				continue
			}
			out.Field(i).Set(normalizeValue(v.Field(i)))
		}
		return out
	}

	return v
}

// respondError writes the failure body for message with status
func respondError(w http.ResponseWriter, status int, message string) {
	JSONResponse(w, status, ErrorResponse{Success: false, Message: message})
}

// statusFor maps a service error kind onto its HTTP status
func statusFor(kind service.ErrorKind) int {
	switch kind {
	case service.KindInvalidInput:
		return http.StatusBadRequest
	case service.KindNotFound, service.KindUnavailable:
		return http.StatusNotFound
	case service.KindForbidden:
		return http.StatusForbidden
	case service.KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// writeError maps err onto a status and stable code. Causes of internal errors are
// logged and never returned to the caller.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	se, ok := service.AsError(err)
	if !ok || se.Kind == service.KindInternal {
		slog.ErrorContext(r.Context(), "Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		respondError(w, http.StatusInternalServerError, service.CodeInternal)
		return
	}
	respondError(w, statusFor(se.Kind), se.Code)
}

// decodeJSON reads a bounded JSON body into dst
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON body")
	}
	return nil
}
