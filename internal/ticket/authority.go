package ticket

import (
	"context"
	"log/slog"
	"time"

	"github.com/khanghh/casoauth/model"
	"github.com/khanghh/casoauth/params"
)

// Credential is what a ticket granting ticket is minted from. A credential is
// either pre-authorized (PrincipalID set, used by token exchanges where the
// subject was already authenticated) or interactive, in which case the
// username, password and optional one time code are verified first.
type Credential struct {
	PrincipalID string            // set when the credential is pre-authorized
	Attributes  map[string]string // principal attributes carried onto the session
	Type        model.TokenType   // provenance of the session being created

	Username    string
	Password    string
	OneTimeCode string
}

type Authenticator interface {
	Authenticate(ctx context.Context, username, password, oneTimeCode string) (*model.User, error)
}

// Authority mints session tickets: ticket granting tickets from credentials
// and service tickets from live granting tickets.
type Authority struct {
	registry      *Registry
	authenticator Authenticator
}

func (a *Authority) CreateTicketGrantingTicket(ctx context.Context, cred Credential) (*Ticket, error) {
	principalID := cred.PrincipalID
	attrs := cred.Attributes
	if principalID == "" {
		if a.authenticator == nil {
			return nil, ErrAuthenticationFailed
		}
		user, err := a.authenticator.Authenticate(ctx, cred.Username, cred.Password, cred.OneTimeCode)
		if err != nil {
			slog.Debug("Credential authentication failed", "username", cred.Username, "error", err)
			return nil, err
		}
		principalID = user.Username
	}

	expiresIn := params.TicketGrantingTicketExpiration
	if cred.Type == model.TokenTypeOffline {
		expiresIn = params.OfflineTicketExpiration
	}
	currentTime := time.Now()
	tgt := &Ticket{
		ID:          NewTicketID(TicketGrantingTicketPrefix),
		PrincipalID: principalID,
		Attributes:  encodeAttributes(attrs),
		CreateTime:  currentTime,
		ExpiresAt:   currentTime.Add(expiresIn),
	}
	if err := a.registry.AddTicket(ctx, tgt, expiresIn); err != nil {
		return nil, err
	}
	return tgt, nil
}

func (a *Authority) GrantServiceTicket(ctx context.Context, grantingTicketID string, service string) (*Ticket, error) {
	tgt, err := a.registry.GetTicket(ctx, grantingTicketID)
	if err != nil {
		return nil, err
	}
	if tgt.Expired() {
		a.registry.DeleteTicket(ctx, tgt.ID)
		return nil, ErrTicketExpired
	}

	currentTime := time.Now()
	st := &Ticket{
		ID:          NewTicketID(ServiceTicketPrefix),
		PrincipalID: tgt.PrincipalID,
		Attributes:  tgt.Attributes,
		Service:     service,
		ParentID:    tgt.ID,
		CreateTime:  currentTime,
		ExpiresAt:   currentTime.Add(params.ServiceTicketExpiration),
	}
	if err := a.registry.AddTicket(ctx, st, params.ServiceTicketExpiration); err != nil {
		return nil, err
	}
	if err := a.registry.addChild(ctx, tgt, st.ID); err != nil {
		return nil, err
	}
	return st, nil
}

func NewAuthority(registry *Registry, authenticator Authenticator) *Authority {
	return &Authority{
		registry:      registry,
		authenticator: authenticator,
	}
}
