package bridge

import (
	"bytes"
	"embed"
	"fmt"
	"path"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// Validator JSON-схемы полезной нагрузки по типу сообщения.
// Файл schemas/<type>.json описывает тип <type>.
type Validator struct {
	schemas map[string]*jsonschema.Schema
}

// NewValidator компилирует встроенные схемы
func NewValidator() (*Validator, error) {
	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		return nil, fmt.Errorf("read schemas: %w", err)
	}

	c := jsonschema.NewCompiler()
	urls := make(map[string]string, len(entries))

	for _, e := range entries {
		raw, err := schemaFS.ReadFile(path.Join("schemas", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", e.Name(), err)
		}

		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("parse schema %s: %w", e.Name(), err)
		}

		url := "mem://bridge/" + e.Name()
		if err := c.AddResource(url, doc); err != nil {
			return nil, fmt.Errorf("add schema %s: %w", e.Name(), err)
		}
		urls[strings.TrimSuffix(e.Name(), ".json")] = url
	}

	v := &Validator{schemas: make(map[string]*jsonschema.Schema, len(urls))}
	for msgType, url := range urls {
		sch, err := c.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", msgType, err)
		}
		v.schemas[msgType] = sch
	}

	return v, nil
}

// MustValidator для сборки хоста: встроенные схемы должны компилироваться
func MustValidator() *Validator {
	v, err := NewValidator()
	if err != nil {
		panic(err)
	}
	return v
}

// Validate проверяет полезную нагрузку; тип без схемы проходит без проверки
func (v *Validator) Validate(msgType string, payload []byte) error {
	sch, ok := v.schemas[msgType]
	if !ok {
		return nil
	}

	if len(bytes.TrimSpace(payload)) == 0 {
		payload = []byte("null")
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(payload))
	if err != nil {
		return Invalid("payload is not valid JSON")
	}

	if err := sch.Validate(inst); err != nil {
		return NewError(fmt.Errorf("%w: %v", ErrInvalid, err), CodeInvalid, "payload does not match "+msgType)
	}
	return nil
}

// Has есть ли схема для типа
func (v *Validator) Has(msgType string) bool {
	_, ok := v.schemas[msgType]
	return ok
}
