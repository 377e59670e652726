package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// TransportError : aucune réponse reçue du backend (réseau, timeout, annulation)
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport error: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ServerError : le backend a répondu avec un statut non-2xx
type ServerError struct {
	Op         string
	StatusCode int
	Detail     string
}

func (e *ServerError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: server returned %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: server returned %d: %s", e.Op, e.StatusCode, e.Detail)
}

// NotFoundError : le job ou le dossier demandé n'existe plus
type NotFoundError struct {
	Resource string
	ID       string
	Detail   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

func IsServer(err error) bool {
	var se *ServerError
	return errors.As(err, &se)
}

// StatusCode retourne le code HTTP porté par l'erreur, 0 si aucune réponse
func StatusCode(err error) int {
	var se *ServerError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	if IsNotFound(err) {
		return http.StatusNotFound
	}
	return 0
}

// parseDetail extrait le champ "detail" d'une erreur FastAPI. Il peut s'agir
// d'une chaîne ou d'une liste d'erreurs de validation (422).
func parseDetail(body []byte) string {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return ""
	}

	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		if len(body) > 512 {
			body = body[:512]
		}
		return string(body)
	}

	var s string
	if err := json.Unmarshal(payload.Detail, &s); err == nil {
		return s
	}

	var items []struct {
		Loc []interface{} `json:"loc"`
		Msg string        `json:"msg"`
	}
	if err := json.Unmarshal(payload.Detail, &items); err == nil && len(items) > 0 {
		var buf bytes.Buffer
		for i, item := range items {
			if i > 0 {
				buf.WriteString("; ")
			}
			if len(item.Loc) > 0 {
				fmt.Fprintf(&buf, "%v: ", item.Loc[len(item.Loc)-1])
			}
			buf.WriteString(item.Msg)
		}
		return buf.String()
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, payload.Detail); err == nil {
		return compact.String()
	}
	return string(payload.Detail)
}
