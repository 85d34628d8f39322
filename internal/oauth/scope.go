package oauth

type Scope struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsDefault   bool   `json:"isDefault"`
}

// ScopeManager resolves scope names to their definitions. The default set is
// unioned into every resolved request; the CAS set is reserved for
// session-bound access token issuance.
type ScopeManager interface {
	GetScope(name string) *Scope
	GetDefaults() []Scope
	GetCASScopes() []Scope
}

type StaticScopeManager struct {
	scopes    map[string]Scope
	defaults  []Scope
	casScopes []Scope
}

func (m *StaticScopeManager) GetScope(name string) *Scope {
	if scope, ok := m.scopes[name]; ok {
		return &scope
	}
	return nil
}

func (m *StaticScopeManager) GetDefaults() []Scope {
	return m.defaults
}

func (m *StaticScopeManager) GetCASScopes() []Scope {
	return m.casScopes
}

func NewStaticScopeManager(scopes []Scope, casScopes []Scope) *StaticScopeManager {
	manager := &StaticScopeManager{
		scopes:    make(map[string]Scope, len(scopes)),
		casScopes: casScopes,
	}
	for _, scope := range scopes {
		manager.scopes[scope.Name] = scope
		if scope.IsDefault {
			manager.defaults = append(manager.defaults, scope)
		}
	}
	return manager
}
