package ticket

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	TicketGrantingTicketPrefix = "TGT"
	ServiceTicketPrefix        = "ST"
)

// Ticket is a session artifact: a ticket granting ticket represents a login
// session, a service ticket a single authorization to one service endpoint
// derived from it. Derived tickets are recorded on the parent so deletion can
// cascade down the graph.
type Ticket struct {
	ID          string    `json:"id"          redis:"id"`
	PrincipalID string    `json:"principalID" redis:"principal_id"`
	Attributes  string    `json:"attributes"  redis:"attributes"` // JSON encoded principal attributes
	Service     string    `json:"service"     redis:"service"`    // target endpoint, service tickets only
	ParentID    string    `json:"parentID"    redis:"parent_id"`  // granting ticket id, empty for root tickets
	ChildIDs    string    `json:"childIDs"    redis:"child_ids"`  // space separated derived ticket ids
	CreateTime  time.Time `json:"createTime"  redis:"create_time"`
	ExpiresAt   time.Time `json:"expiresAt"   redis:"expires_at"`
}

func (t *Ticket) Expired() bool {
	return time.Now().After(t.ExpiresAt)
}

func (t *Ticket) IsServiceTicket() bool {
	return strings.HasPrefix(t.ID, ServiceTicketPrefix+"-")
}

func (t *Ticket) Children() []string {
	return strings.Fields(t.ChildIDs)
}

func (t *Ticket) AttributeMap() map[string]string {
	if t.Attributes == "" {
		return nil
	}
	attrs := make(map[string]string)
	if err := json.Unmarshal([]byte(t.Attributes), &attrs); err != nil {
		return nil
	}
	return attrs
}

func NewTicketID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

func encodeAttributes(attrs map[string]string) string {
	if len(attrs) == 0 {
		return ""
	}
	raw, err := json.Marshal(attrs)
	if err != nil {
		return ""
	}
	return string(raw)
}
