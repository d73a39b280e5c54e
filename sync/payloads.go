// ABOUTME: JSON payloads returned by the Pipedrive proxy and the Redtail API
// ABOUTME: Tolerant decoding for ids and values that arrive as strings, numbers or objects

package sync

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// flexString decodes a JSON string, number or boolean into its text form. Objects
// contribute their "value" or "name" member, and null decodes to "".
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
	case '{':
		var obj struct {
			Value *flexString `json:"value"`
			Name  *flexString `json:"name"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		switch {
		case obj.Value != nil:
			*f = *obj.Value
		case obj.Name != nil:
			*f = *obj.Name
		default:
			*f = ""
		}
	case '[':
		*f = ""
	default:
		if n, err := strconv.ParseFloat(string(data), 64); err == nil {
			*f = flexString(strconv.FormatFloat(n, 'f', -1, 64))
			return nil
		}
		*f = flexString(data)
	}
	return nil
}

// String returns the decoded text.
func (f flexString) String() string {
	return string(f)
}

// present reports whether the id carries a usable value. Pipedrive uses 0 for
// "no linked record".
func (f flexString) present() bool {
	return f != "" && f != "0"
}

// pipedriveEnvelope wraps every Pipedrive proxy response.
type pipedriveEnvelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// failed reports an explicit success:false. A missing success member counts as success.
func (e *pipedriveEnvelope) failed() bool {
	return e.Success != nil && !*e.Success
}

// PersonField is a Pipedrive person field definition.
type PersonField struct {
	Key       string          `json:"key"`
	Name      string          `json:"name"`
	FieldType json.RawMessage `json:"field_type"`
	Options   []FieldOption   `json:"options"`
}

// FieldOption maps an enum option id to its label.
type FieldOption struct {
	ID    flexString `json:"id"`
	Label string     `json:"label"`
}

type contactValue struct {
	Value   flexString `json:"value"`
	Number  flexString `json:"number"`
	Address flexString `json:"address"`
}

// contactList decodes either an array of contact values or a bare string.
type contactList []contactValue

func (l *contactList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		var single flexString
		if err := single.UnmarshalJSON(data); err != nil {
			return err
		}
		if single == "" {
			*l = nil
			return nil
		}
		*l = contactList{{Value: single}}
		return nil
	}

	var values []contactValue
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	*l = values
	return nil
}

func (l contactList) first(pick func(contactValue) flexString) string {
	if len(l) == 0 {
		return ""
	}
	return pick(l[0]).String()
}

// Person is a Pipedrive person. Custom fields are kept raw in Fields, keyed by
// their hashed field key.
type Person struct {
	ID        flexString  `json:"id"`
	Name      string      `json:"name"`
	Phone     contactList `json:"phone"`
	Email     contactList `json:"email"`
	OwnerName string      `json:"owner_name"`
	Owner     *ownerRef   `json:"owner"`
	OwnerID   *ownerRef   `json:"owner_id"`

	Fields map[string]json.RawMessage `json:"-"`
}

func (p *Person) UnmarshalJSON(data []byte) error {
	type plain Person
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	if err := json.Unmarshal(data, &decoded.Fields); err != nil {
		return err
	}
	*p = Person(decoded)
	return nil
}

// ownerRef decodes a Pipedrive user reference. Bare numeric ids carry no name.
type ownerRef struct {
	Name string
}

func (o *ownerRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	o.Name = obj.Name
	return nil
}

// OwnerDisplayName returns the name of the user owning the person.
func (p *Person) OwnerDisplayName() string {
	if p.OwnerName != "" {
		return p.OwnerName
	}
	if p.Owner != nil && p.Owner.Name != "" {
		return p.Owner.Name
	}
	if p.OwnerID != nil {
		return p.OwnerID.Name
	}
	return ""
}

// Activity is a Pipedrive activity.
type Activity struct {
	ID         flexString `json:"id"`
	DueDate    string     `json:"due_date"`
	DueTime    string     `json:"due_time"`
	Duration   string     `json:"duration"`
	PersonID   flexString `json:"person_id"`
	PersonName string     `json:"person_name"`
	OwnerName  string     `json:"owner_name"`
	Subject    string     `json:"subject"`
	Type       string     `json:"type"`
}

// RedtailContact is a contact from the Redtail public API.
type RedtailContact struct {
	ID        flexString  `json:"id"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Phones    contactList `json:"phones"`
	Emails    contactList `json:"emails"`
	Source    flexString  `json:"source"`
	Category  flexString  `json:"category"`
}

// redtailContacts is the contacts listing. Some deployments return the array
// under "data" instead of "contacts".
type redtailContacts struct {
	Contacts []RedtailContact `json:"contacts"`
	Data     []RedtailContact `json:"data"`
}

func (r *redtailContacts) list() []RedtailContact {
	if r.Contacts != nil {
		return r.Contacts
	}
	return r.Data
}
