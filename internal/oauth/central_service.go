package oauth

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/khanghh/casoauth/internal/audit"
	"github.com/khanghh/casoauth/internal/ticket"
	"github.com/khanghh/casoauth/model"
)

// CentralAuthenticationService mints session tickets: service tickets from a
// live granting ticket, and fresh granting tickets from a credential.
type CentralAuthenticationService interface {
	GrantServiceTicket(ctx context.Context, grantingTicketID string, service string) (*ticket.Ticket, error)
	CreateTicketGrantingTicket(ctx context.Context, cred ticket.Credential) (*ticket.Ticket, error)
}

// TicketRegistry looks up and deletes session tickets. Deletion cascades to
// derived tickets and is idempotent.
type TicketRegistry interface {
	GetTicket(ctx context.Context, ticketID string) (*ticket.Ticket, error)
	DeleteTicket(ctx context.Context, ticketID string) bool
}

// ServiceRegistry resolves a registered client by its client id.
type ServiceRegistry interface {
	GetService(ctx context.Context, clientID string) (*model.Service, error)
}

// CentralOAuthService is the token lifecycle orchestrator. It holds no state
// of its own beyond the injected collaborators and may be shared freely
// between goroutines; all mutable state lives in the token and ticket
// registries.
type CentralOAuthService struct {
	cas             CentralAuthenticationService
	ticketRegistry  TicketRegistry
	tokenRegistry   TokenRegistry
	serviceRegistry ServiceRegistry
	scopeManager    ScopeManager
	personalTokens  PersonalAccessTokenStore
}

func newTokenID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

func scopeNames(scopes []Scope) []string {
	names := make([]string, 0, len(scopes))
	for _, scope := range scopes {
		names = append(names, scope.Name)
	}
	return names
}

func (s *CentralOAuthService) GetRegisteredService(ctx context.Context, clientID string) (*model.Service, error) {
	return s.serviceRegistry.GetService(ctx, clientID)
}

// GrantAuthorizationCode validates a login session by minting a service
// ticket against the redirect endpoint and wraps the result into a new
// authorization code. A session failure here escapes untranslated; every
// later exchange step reports InvalidTokenError instead.
func (s *CentralOAuthService) GrantAuthorizationCode(ctx context.Context, tokenType model.TokenType, clientID string,
	grantingTicketID string, redirectURI string, scopes []string) (*model.Token, error) {
	serviceTicket, err := s.cas.GrantServiceTicket(ctx, grantingTicketID, redirectURI)
	if err != nil {
		return nil, err
	}

	code := &model.Token{
		ID:          newTokenID(model.AuthorizationCodePrefix),
		Variant:     model.VariantAuthorizationCode,
		Type:        tokenType,
		ClientID:    clientID,
		PrincipalID: serviceTicket.PrincipalID,
		TicketID:    serviceTicket.ID,
		Service:     serviceTicket.Service,
		Scope:       model.JoinScopes(scopes),
	}
	if err := s.tokenRegistry.AddToken(ctx, code); err != nil {
		return nil, err
	}
	slog.Debug("Granted authorization code", "token", code.ID, "client", clientID, "principal", code.PrincipalID)
	audit.RecordTokenGranted(ctx, tokenRecord(code))
	return code, nil
}

// GrantOnlineAccessToken exchanges an authorization code for an access token
// of type ONLINE bound to a brand-new granting ticket. The code's service
// ticket is deleted in the same step, so a code can be exchanged only once.
func (s *CentralOAuthService) GrantOnlineAccessToken(ctx context.Context, code *model.Token) (*model.Token, error) {
	tgt, err := s.exchangeCodeForGrantingTicket(ctx, code, model.TokenTypeOnline)
	if err != nil {
		return nil, err
	}

	accessToken := &model.Token{
		ID:          newTokenID(model.AccessTokenPrefix),
		Variant:     model.VariantAccessToken,
		Type:        model.TokenTypeOnline,
		ClientID:    code.ClientID,
		PrincipalID: code.PrincipalID,
		TicketID:    tgt.ID,
		Service:     code.Service,
		Scope:       code.Scope,
	}

	// removing the service ticket cascades and invalidates the code itself
	s.ticketRegistry.DeleteTicket(ctx, code.TicketID)
	if err := s.tokenRegistry.AddToken(ctx, accessToken); err != nil {
		return nil, err
	}
	slog.Debug("Granted online access token", "token", accessToken.ID, "code", code.ID)
	audit.RecordTokenGranted(ctx, tokenRecord(accessToken))
	return accessToken, nil
}

// GrantOfflineRefreshToken exchanges an authorization code for a durable
// refresh token bound to a long-lived granting ticket. Like the online
// exchange, it consumes the code's service ticket.
func (s *CentralOAuthService) GrantOfflineRefreshToken(ctx context.Context, code *model.Token) (*model.Token, error) {
	tgt, err := s.exchangeCodeForGrantingTicket(ctx, code, model.TokenTypeOffline)
	if err != nil {
		return nil, err
	}

	refreshToken := &model.Token{
		ID:          newTokenID(model.RefreshTokenPrefix),
		Variant:     model.VariantRefreshToken,
		Type:        model.TokenTypeOffline,
		ClientID:    code.ClientID,
		PrincipalID: code.PrincipalID,
		TicketID:    tgt.ID,
		Service:     code.Service,
		Scope:       code.Scope,
	}

	// removing the service ticket cascades and invalidates the code itself
	s.ticketRegistry.DeleteTicket(ctx, code.TicketID)
	if err := s.tokenRegistry.AddToken(ctx, refreshToken); err != nil {
		return nil, err
	}
	slog.Debug("Granted offline refresh token", "token", refreshToken.ID, "code", code.ID)
	audit.RecordTokenGranted(ctx, tokenRecord(refreshToken))
	return refreshToken, nil
}

// exchangeCodeForGrantingTicket builds a pre-authorized credential from the
// code's principal and mints a fresh granting ticket from it. Any failure is
// reported as InvalidTokenError keyed to the code, never as the underlying
// session error.
func (s *CentralOAuthService) exchangeCodeForGrantingTicket(ctx context.Context, code *model.Token, tokenType model.TokenType) (*ticket.Ticket, error) {
	serviceTicket, err := s.ticketRegistry.GetTicket(ctx, code.TicketID)
	if err != nil {
		return nil, NewInvalidTokenError(code.ID)
	}
	cred := ticket.Credential{
		PrincipalID: code.PrincipalID,
		Attributes:  serviceTicket.AttributeMap(),
		Type:        tokenType,
	}
	tgt, err := s.cas.CreateTicketGrantingTicket(ctx, cred)
	if err != nil {
		return nil, NewInvalidTokenError(code.ID)
	}
	return tgt, nil
}

// GrantOfflineAccessToken mints a new service ticket from the refresh
// token's granting ticket and wraps it into an access token of type OFFLINE.
// The refresh token itself is never consumed; repeated calls are legal and
// each produces an independent access token.
func (s *CentralOAuthService) GrantOfflineAccessToken(ctx context.Context, refreshToken *model.Token) (*model.Token, error) {
	serviceTicket, err := s.cas.GrantServiceTicket(ctx, refreshToken.TicketID, refreshToken.Service)
	if err != nil {
		return nil, NewInvalidTokenError(refreshToken.ID)
	}

	accessToken := &model.Token{
		ID:          newTokenID(model.AccessTokenPrefix),
		Variant:     model.VariantAccessToken,
		Type:        model.TokenTypeOffline,
		ClientID:    refreshToken.ClientID,
		PrincipalID: refreshToken.PrincipalID,
		TicketID:    serviceTicket.ID,
		Service:     refreshToken.Service,
		Scope:       refreshToken.Scope,
	}
	if err := s.tokenRegistry.AddToken(ctx, accessToken); err != nil {
		return nil, err
	}
	slog.Debug("Granted offline access token", "token", accessToken.ID, "refreshToken", refreshToken.ID)
	audit.RecordTokenGranted(ctx, tokenRecord(accessToken))
	return accessToken, nil
}

// GrantCASAccessToken wraps an already-live granting ticket directly into an
// access token of type CAS. No new ticket is minted, there is no owning
// client, and the scope set is the catalog's reserved CAS set.
func (s *CentralOAuthService) GrantCASAccessToken(ctx context.Context, grantingTicket *ticket.Ticket, service string) (*model.Token, error) {
	accessToken := &model.Token{
		ID:          newTokenID(model.AccessTokenPrefix),
		Variant:     model.VariantAccessToken,
		Type:        model.TokenTypeCAS,
		PrincipalID: grantingTicket.PrincipalID,
		TicketID:    grantingTicket.ID,
		Service:     service,
		Scope:       model.JoinScopes(scopeNames(s.scopeManager.GetCASScopes())),
	}
	if err := s.tokenRegistry.AddToken(ctx, accessToken); err != nil {
		return nil, err
	}
	slog.Debug("Granted CAS access token", "token", accessToken.ID, "principal", accessToken.PrincipalID)
	audit.RecordTokenGranted(ctx, tokenRecord(accessToken))
	return accessToken, nil
}

// GrantPersonalAccessToken mints a granting ticket for the definition's
// principal without any password involved and issues an access token of type
// PERSONAL reusing the definition's own id.
func (s *CentralOAuthService) GrantPersonalAccessToken(ctx context.Context, personalToken *model.PersonalAccessToken) (*model.Token, error) {
	cred := ticket.Credential{
		PrincipalID: personalToken.PrincipalID,
		Type:        model.TokenTypePersonal,
	}
	tgt, err := s.cas.CreateTicketGrantingTicket(ctx, cred)
	if err != nil {
		return nil, NewInvalidTokenError(personalToken.ID)
	}

	accessToken := &model.Token{
		ID:          personalToken.ID,
		Variant:     model.VariantAccessToken,
		Type:        model.TokenTypePersonal,
		PrincipalID: personalToken.PrincipalID,
		TicketID:    tgt.ID,
		Scope:       personalToken.Scope,
	}
	if err := s.tokenRegistry.AddToken(ctx, accessToken); err != nil {
		return nil, err
	}
	slog.Debug("Granted personal access token", "token", accessToken.ID, "principal", accessToken.PrincipalID)
	audit.RecordTokenGranted(ctx, tokenRecord(accessToken))
	return accessToken, nil
}

// RevokeToken deletes the token's bound ticket. Dependent tokens disappear
// through the registry's own cascade semantics.
func (s *CentralOAuthService) RevokeToken(ctx context.Context, token *model.Token) bool {
	deleted := s.ticketRegistry.DeleteTicket(ctx, token.TicketID)
	if deleted {
		audit.RecordTokenRevoked(ctx, tokenRecord(token))
	}
	return deleted
}

// RevokeClientTokens deletes the tickets of every refresh and access token
// owned by the client. The ownership check fails before any deletion.
func (s *CentralOAuthService) RevokeClientTokens(ctx context.Context, clientID, clientSecret string) bool {
	service, err := s.serviceRegistry.GetService(ctx, clientID)
	if err != nil {
		slog.Error("Registered service could not be found", "client", clientID, "error", err)
		return false
	}
	if service.ClientSecret != clientSecret {
		slog.Error("Invalid client secret", "client", clientID)
		return false
	}

	for _, variant := range []model.TokenVariant{model.VariantRefreshToken, model.VariantAccessToken} {
		tokens, err := s.tokenRegistry.GetClientTokens(ctx, clientID, variant)
		if err != nil {
			slog.Error("Could not enumerate client tokens", "client", clientID, "variant", variant, "error", err)
			return false
		}
		for _, token := range tokens {
			slog.Debug("Revoking token", "token", token.ID)
			s.ticketRegistry.DeleteTicket(ctx, token.TicketID)
			audit.RecordTokenRevoked(ctx, tokenRecord(token))
		}
	}
	return true
}

// RevokeClientPrincipalTokens deletes the granting tickets of every refresh
// token and every ONLINE access token held by accessToken's principal for
// the target client. Only CAS tokens may name the target client explicitly;
// any other token must name its own client.
func (s *CentralOAuthService) RevokeClientPrincipalTokens(ctx context.Context, accessToken *model.Token, clientID string) bool {
	var targetClientID string
	if accessToken.Type == model.TokenTypeCAS {
		if strings.TrimSpace(clientID) == "" {
			slog.Warn("CAS token used for revocation, client id must be specified")
			return false
		}
		targetClientID = clientID
	} else {
		if accessToken.ClientID != clientID {
			slog.Warn("Access token's client id and specified client id must match")
			return false
		}
		targetClientID = accessToken.ClientID
	}

	refreshTokens, err := s.tokenRegistry.GetClientPrincipalTokens(ctx, targetClientID, accessToken.PrincipalID, model.VariantRefreshToken)
	if err != nil {
		return false
	}
	for _, token := range refreshTokens {
		slog.Debug("Revoking refresh token", "token", token.ID)
		s.ticketRegistry.DeleteTicket(ctx, token.TicketID)
		audit.RecordTokenRevoked(ctx, tokenRecord(token))
	}

	accessTokens, err := s.tokenRegistry.GetClientPrincipalTokens(ctx, targetClientID, accessToken.PrincipalID, model.VariantAccessToken, model.TokenTypeOnline)
	if err != nil {
		return false
	}
	for _, token := range accessTokens {
		slog.Debug("Revoking access token", "token", token.ID)
		s.ticketRegistry.DeleteTicket(ctx, token.TicketID)
		audit.RecordTokenRevoked(ctx, tokenRecord(token))
	}
	return true
}

// GetClientMetadata returns the client's display record and distinct
// principal count after verifying the client secret.
func (s *CentralOAuthService) GetClientMetadata(ctx context.Context, clientID, clientSecret string) (*ClientMetadata, error) {
	service, err := s.serviceRegistry.GetService(ctx, clientID)
	if err != nil {
		slog.Error("Registered service could not be found", "client", clientID, "error", err)
		return nil, ErrAuthorizationDenied
	}
	if service.ClientSecret != clientSecret {
		slog.Error("Invalid client secret", "client", clientID)
		return nil, ErrAuthorizationDenied
	}

	count, err := s.tokenRegistry.CountDistinctPrincipals(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return &ClientMetadata{
		ClientID:    service.ClientID,
		Name:        service.Name,
		Description: service.Description,
		Users:       count,
	}, nil
}

// GetPrincipalMetadata aggregates, across all the principal's refresh and
// access tokens, one record per distinct client with the union of scopes
// seen for that client. Only CAS tokens may access it.
func (s *CentralOAuthService) GetPrincipalMetadata(ctx context.Context, accessToken *model.Token) ([]*PrincipalMetadata, error) {
	if accessToken.Type != model.TokenTypeCAS {
		slog.Warn("Principal metadata can only be accessed with an access token of type CAS", "token", accessToken.ID)
		return nil, NewInvalidTokenError(accessToken.ID)
	}

	metadata := make(map[string]*PrincipalMetadata)
	for _, variant := range []model.TokenVariant{model.VariantRefreshToken, model.VariantAccessToken} {
		tokens, err := s.tokenRegistry.GetPrincipalTokens(ctx, accessToken.PrincipalID, variant)
		if err != nil {
			return nil, err
		}
		for _, token := range tokens {
			if token.ClientID == "" {
				// CAS and personal tokens have no owning client
				continue
			}
			detail, ok := metadata[token.ClientID]
			if !ok {
				service, err := s.serviceRegistry.GetService(ctx, token.ClientID)
				if err != nil {
					slog.Warn("Skipping token of unknown client", "token", token.ID, "client", token.ClientID)
					continue
				}
				detail = &PrincipalMetadata{
					ClientID:    service.ClientID,
					Name:        service.Name,
					Description: service.Description,
				}
				metadata[token.ClientID] = detail
			}
			detail.Scopes = model.SplitScopes(model.JoinScopes(append(detail.Scopes, token.Scopes()...)))
		}
	}

	details := make([]*PrincipalMetadata, 0, len(metadata))
	for _, detail := range metadata {
		details = append(details, detail)
	}
	return details, nil
}

// IsRefreshToken reports whether a refresh token with exactly these scopes
// exists for the client/principal pair.
func (s *CentralOAuthService) IsRefreshToken(ctx context.Context, clientID, principalID string, scopes []string) bool {
	exists, err := s.tokenRegistry.HasToken(ctx, clientID, principalID, scopes, model.VariantRefreshToken)
	return err == nil && exists
}

// IsAccessToken reports whether an access token of the given type with
// exactly these scopes exists for the client/principal pair.
func (s *CentralOAuthService) IsAccessToken(ctx context.Context, tokenType model.TokenType, clientID, principalID string, scopes []string) bool {
	exists, err := s.tokenRegistry.HasToken(ctx, clientID, principalID, scopes, model.VariantAccessToken, tokenType)
	return err == nil && exists
}

// GetToken routes a token id to its variant by prefix and resolves it.
// Personal access token definitions are never served here; use
// GetPersonalAccessToken.
func (s *CentralOAuthService) GetToken(ctx context.Context, tokenID string) (*model.Token, error) {
	return s.GetTokenByVariant(ctx, tokenID, model.VariantForTokenID(tokenID))
}

// GetTokenByVariant resolves a token and verifies its bound ticket is still
// live. A dead ticket is cleaned up on the spot and the token reported
// invalid; a second identical call observes the same failure.
func (s *CentralOAuthService) GetTokenByVariant(ctx context.Context, tokenID string, variant model.TokenVariant) (*model.Token, error) {
	token, err := s.tokenRegistry.GetToken(ctx, tokenID, variant)
	if err != nil {
		slog.Debug("Token cannot be found in the token registry", "token", tokenID, "variant", variant)
		return nil, NewInvalidTokenError(tokenID)
	}

	bound, err := s.ticketRegistry.GetTicket(ctx, token.TicketID)
	if err != nil || bound.Expired() {
		// token present, ticket dead: the accepted inconsistency window of
		// two-step revocation. Clean up lazily and report the token invalid.
		s.ticketRegistry.DeleteTicket(ctx, token.TicketID)
		slog.Debug("Token ticket is expired", "token", tokenID, "ticket", token.TicketID)
		return nil, NewInvalidTokenError(tokenID)
	}
	return token, nil
}

func (s *CentralOAuthService) GetPersonalAccessToken(ctx context.Context, tokenID string) (*model.PersonalAccessToken, error) {
	return s.personalTokens.GetToken(ctx, tokenID)
}

// GetScopes resolves every requested name through the catalog, failing fast
// on the first unknown one, then unions in the default set keyed by name.
func (s *CentralOAuthService) GetScopes(ctx context.Context, requested []string) (map[string]Scope, error) {
	scopeMap := make(map[string]Scope)
	for _, name := range requested {
		scope := s.scopeManager.GetScope(name)
		if scope == nil {
			slog.Error("Could not find requested scope", "scope", name)
			return nil, NewInvalidScopeError(name)
		}
		scopeMap[scope.Name] = *scope
	}
	for _, scope := range s.scopeManager.GetDefaults() {
		scopeMap[scope.Name] = scope
	}
	return scopeMap, nil
}

func tokenRecord(token *model.Token) audit.TokenRecord {
	return audit.TokenRecord{
		TokenID:     token.ID,
		TokenType:   token.Type,
		ClientID:    token.ClientID,
		PrincipalID: token.PrincipalID,
		Service:     token.Service,
	}
}

func NewCentralOAuthService(
	cas CentralAuthenticationService,
	ticketRegistry TicketRegistry,
	tokenRegistry TokenRegistry,
	serviceRegistry ServiceRegistry,
	scopeManager ScopeManager,
	personalTokens PersonalAccessTokenStore,
) *CentralOAuthService {
	return &CentralOAuthService{
		cas:             cas,
		ticketRegistry:  ticketRegistry,
		tokenRegistry:   tokenRegistry,
		serviceRegistry: serviceRegistry,
		scopeManager:    scopeManager,
		personalTokens:  personalTokens,
	}
}
