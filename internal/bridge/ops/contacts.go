package ops

import (
	"context"
	"encoding/json"
	"strings"

	"natively/internal/bridge"
	"natively/internal/domain/permission"
)

type permissionResponse struct {
	Granted bool   `json:"granted"`
	Status  string `json:"status"`
}

func grantedStatus(granted bool) string {
	if granted {
		return string(permission.StatusGranted)
	}
	return string(permission.StatusDenied)
}

func (o *Ops) contactsRequestPermission(ctx context.Context, _ json.RawMessage) (any, error) {
	gate := o.Permissions.Contacts
	if gate == nil {
		return permissionResponse{Status: grantedStatus(false)}, nil
	}

	granted := gate.Has(ctx) || gate.Request(ctx)
	return permissionResponse{Granted: granted, Status: grantedStatus(granted)}, nil
}

type contactsResponse struct {
	Contacts []bridge.Contact `json:"contacts"`
	Query    *string          `json:"query,omitempty"`
	Error    string           `json:"error,omitempty"`
}

func (o *Ops) loadContacts(ctx context.Context) ([]bridge.Contact, string) {
	if o.Capabilities.Contacts == nil {
		return []bridge.Contact{}, bridge.ErrUnavailable.Error()
	}
	if gate := o.Permissions.Contacts; gate == nil || !gate.Has(ctx) {
		return []bridge.Contact{}, "permission denied"
	}

	contacts, err := o.Capabilities.Contacts.All(ctx)
	if err != nil {
		o.log.Warn("Не удалось получить контакты", "error", err)
		return []bridge.Contact{}, err.Error()
	}
	if contacts == nil {
		contacts = []bridge.Contact{}
	}
	return contacts, ""
}

func (o *Ops) contactsGetAll(ctx context.Context, _ json.RawMessage) (any, error) {
	contacts, errText := o.loadContacts(ctx)
	return contactsResponse{Contacts: contacts, Error: errText}, nil
}

// contactsSearch ищет по имени, телефону и почте без учета регистра
func (o *Ops) contactsSearch(ctx context.Context, payload json.RawMessage) (any, error) {
	var req struct {
		Query string `json:"query"`
	}
	if err := decode(payload, &req); err != nil {
		return nil, err
	}

	contacts, errText := o.loadContacts(ctx)
	query := strings.ToLower(strings.TrimSpace(req.Query))

	matched := make([]bridge.Contact, 0, len(contacts))
	for _, c := range contacts {
		if query == "" || contactMatches(c, query) {
			matched = append(matched, c)
		}
	}

	return contactsResponse{Contacts: matched, Query: &req.Query, Error: errText}, nil
}

func contactMatches(c bridge.Contact, query string) bool {
	if strings.Contains(strings.ToLower(c.Name), query) {
		return true
	}
	for _, phone := range c.PhoneNumbers {
		if strings.Contains(strings.ToLower(phone), query) {
			return true
		}
	}
	for _, email := range c.Emails {
		if strings.Contains(strings.ToLower(email), query) {
			return true
		}
	}
	return false
}
