package oauth

// ClientMetadata is the display record of a registered client, together with
// the number of distinct principals currently holding tokens for it.
type ClientMetadata struct {
	ClientID    string `json:"clientID"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Users       int64  `json:"users"`
}

// PrincipalMetadata describes one client a principal has live tokens for,
// accumulating the union of scopes seen across those tokens.
type PrincipalMetadata struct {
	ClientID    string   `json:"clientID"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Scopes      []string `json:"scopes"`
}
