package testutil

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Shoiba023/invisible-load-reducer/internal/domain"
	"github.com/Shoiba023/invisible-load-reducer/internal/ports"
)

// PlainHasher is a fast, reversible stand-in for bcrypt.
type PlainHasher struct{}

func (PlainHasher) Hash(password string) (string, error) { return "plain:" + password, nil }

func (PlainHasher) Compare(hash, password string) error {
	if hash != "plain:"+password {
		return errors.New("password mismatch")
	}
	return nil
}

// Assistant returns canned results and counts calls.
type Assistant struct {
	mu             sync.Mutex
	Categorization domain.Categorization
	Scripts        domain.Scripts
	Err            error
	Calls          int
	LastCategory   string
	LastSituation  string
}

func NewAssistant() *Assistant {
	return &Assistant{
		Categorization: domain.Categorization{
			Today:    []string{"pay the water bill"},
			CanWait:  []string{"sort the garage"},
			Delegate: []string{"school pickup"},
			Ignore:   []string{"perfect birthday cake"},
		},
		Scripts: domain.Scripts{
			ShortScripts: []string{"I need help with dinner tonight."},
			LongScripts:  []string{"I've noticed I'm handling most of the evening routine. Can we split it?"},
		},
	}
}

func (a *Assistant) CategorizeBrainDump(_ context.Context, _ string) (domain.Categorization, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Calls++
	if a.Err != nil {
		return domain.Categorization{}, a.Err
	}
	return a.Categorization, nil
}

func (a *Assistant) GenerateScripts(_ context.Context, category, situation string) (domain.Scripts, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Calls++
	a.LastCategory = category
	a.LastSituation = situation
	if a.Err != nil {
		return domain.Scripts{}, a.Err
	}
	return a.Scripts, nil
}

func (a *Assistant) SetErr(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Err = err
}

// ValidSignature is the only webhook signature Payments accepts.
const ValidSignature = "t=1,v1=valid"

// Payments records checkout requests and serves sessions and webhook events from memory.
// Webhook payloads use the form "<eventID>|<eventType>|<sessionID>".
type Payments struct {
	mu       sync.Mutex
	sessions map[string]ports.CheckoutSession
	Created  []ports.CheckoutRequest
}

func NewPayments() *Payments {
	return &Payments{sessions: map[string]ports.CheckoutSession{}}
}

func (p *Payments) CreateCheckoutSession(_ context.Context, req ports.CheckoutRequest) (ports.CheckoutSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Created = append(p.Created, req)
	id := fmt.Sprintf("cs_test_%d", len(p.Created))
	session := ports.CheckoutSession{
		ID:            id,
		URL:           "https://checkout.stripe.test/" + id,
		PaymentStatus: "unpaid",
		UserID:        req.UserID.String(),
	}
	p.sessions[id] = session
	return session, nil
}

func (p *Payments) GetCheckoutSession(_ context.Context, sessionID string) (ports.CheckoutSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.sessions[sessionID]
	if !ok {
		return ports.CheckoutSession{}, errors.New("no such checkout session")
	}
	return s, nil
}

// MarkPaid flips a session to paid with the given customer id.
func (p *Payments) MarkPaid(sessionID, customerID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.sessions[sessionID]
	s.PaymentStatus = ports.PaymentStatusPaid
	s.CustomerID = customerID
	p.sessions[sessionID] = s
}

func (p *Payments) ParseWebhook(payload []byte, signature string) (ports.PaymentEvent, error) {
	if signature != ValidSignature {
		return ports.PaymentEvent{}, domain.ErrInvalidSignature
	}
	parts := strings.Split(string(payload), "|")
	if len(parts) != 3 {
		return ports.PaymentEvent{}, fmt.Errorf("%w: malformed event", domain.ErrInvalidInput)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	event := ports.PaymentEvent{ID: parts[0], Type: parts[1]}
	if s, ok := p.sessions[parts[2]]; ok {
		event.Session = &s
	}
	return event, nil
}

// WebhookPayload builds a payload ParseWebhook understands.
func WebhookPayload(eventID, eventType, sessionID string) []byte {
	return []byte(eventID + "|" + eventType + "|" + sessionID)
}
