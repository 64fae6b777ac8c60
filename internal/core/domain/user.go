package domain

import "encoding/json"

const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
)

// User is the dashboard operator record as returned by the platform API.
// The platform adds fields to this payload without notice, so everything not
// modelled explicitly is kept verbatim in Extra and written back on marshalling.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

var knownUserFields = map[string]struct{}{
	"id": {}, "name": {}, "email": {}, "role": {}, "createdAt": {}, "updatedAt": {},
}

func (u *User) UnmarshalJSON(data []byte) error {
	type alias User
	var known alias
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for k := range knownUserFields {
		delete(all, k)
	}
	if len(all) == 0 {
		all = nil
	}

	*u = User(known)
	u.Extra = all
	return nil
}

func (u User) MarshalJSON() ([]byte, error) {
	type alias User
	base, err := json.Marshal(alias(u))
	if err != nil {
		return nil, err
	}
	if len(u.Extra) == 0 {
		return base, nil
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for k, v := range u.Extra {
		if _, known := knownUserFields[k]; !known {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}
