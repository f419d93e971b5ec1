package services

import (
	"encoding/json"
	"fmt"
)

const sheetBaseURL = "https://docs.google.com/spreadsheets/d"

// Profile is the user profile returned by the backend alongside session
// verification. The backend evolves independently, so fields the client
// does not know about are kept in Extra rather than dropped.
type Profile struct {
	SheetID       string
	FirstTimeUser bool
	AccessToken   string
	Token         string

	// Extra holds backend fields this client has no named mapping for.
	Extra map[string]json.RawMessage
}

// profileJSON mirrors the named fields for decoding.
type profileJSON struct {
	SheetID       string `json:"sheet_id"`
	FirstTimeUser bool   `json:"first_time_user"`
	AccessToken   string `json:"access_token"`
	Token         string `json:"token"`
}

// UnmarshalJSON decodes the named fields and collects everything else
// into Extra.
func (p *Profile) UnmarshalJSON(data []byte) error {
	var known profileJSON
	if err := json.Unmarshal(data, &known); err != nil {
		return fmt.Errorf("failed to decode profile: %w", err)
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return fmt.Errorf("failed to decode profile fields: %w", err)
	}
	for _, name := range []string{"sheet_id", "first_time_user", "access_token", "token"} {
		delete(all, name)
	}

	p.SheetID = known.SheetID
	p.FirstTimeUser = known.FirstTimeUser
	p.AccessToken = known.AccessToken
	p.Token = known.Token
	if len(all) > 0 {
		p.Extra = all
	}
	return nil
}

// Credential returns the rotated bearer token carried by the profile
// response, if any. The backend may use either field name.
func (p *Profile) Credential() string {
	if p.AccessToken != "" {
		return p.AccessToken
	}
	return p.Token
}

// SheetConnected reports whether a spreadsheet is linked to the account.
func (p *Profile) SheetConnected() bool {
	return p != nil && p.SheetID != ""
}

// SheetURL builds the spreadsheet address from the connected sheet id.
// Returns "" when no sheet is connected.
func (p *Profile) SheetURL() string {
	if !p.SheetConnected() {
		return ""
	}
	return fmt.Sprintf("%s/%s", sheetBaseURL, p.SheetID)
}
