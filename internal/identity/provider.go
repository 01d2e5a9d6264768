package identity

import (
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/golang-jwt/jwt/v5"
)

// EventKind marks a session transition.
type EventKind int

const (
	SignedIn EventKind = iota
	SignedOut
)

// Event is delivered to subscribers whenever the session changes.
type Event struct {
	Kind   EventKind
	UserID string
}

// Provider supplies the stable id of the signed-in user, if any, and lets
// components react to sign-in/sign-out. The schedule store consults it to
// decide whether a write gets a remote leg at all.
type Provider interface {
	CurrentUserID() (string, bool)
	Subscribe() <-chan Event
}

// SessionProvider is an in-process session holder. SignIn and SignOut
// broadcast to every subscriber; a slow subscriber drops events rather than
// blocking the session change.
type SessionProvider struct {
	mu     sync.RWMutex
	userID string
	subs   []chan Event
}

func NewSessionProvider() *SessionProvider {
	return &SessionProvider{}
}

func (p *SessionProvider) CurrentUserID() (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.userID, p.userID != ""
}

func (p *SessionProvider) Subscribe() <-chan Event {
	ch := make(chan Event, 4)
	p.mu.Lock()
	p.subs = append(p.subs, ch)
	p.mu.Unlock()
	return ch
}

func (p *SessionProvider) SignIn(userID string) {
	if userID == "" {
		return
	}
	p.mu.Lock()
	p.userID = userID
	subs := append([]chan Event(nil), p.subs...)
	p.mu.Unlock()

	log.Printf("Identity: signed in as %s", userID)
	broadcast(subs, Event{Kind: SignedIn, UserID: userID})
}

func (p *SessionProvider) SignOut() {
	p.mu.Lock()
	userID := p.userID
	p.userID = ""
	subs := append([]chan Event(nil), p.subs...)
	p.mu.Unlock()

	if userID == "" {
		return
	}
	log.Printf("Identity: signed out %s", userID)
	broadcast(subs, Event{Kind: SignedOut, UserID: userID})
}

func broadcast(subs []chan Event, ev Event) {
	for _, ch := range subs {
		select {
		case ch <- ev:
		default:
			log.Printf("Identity: dropping %v event for slow subscriber", ev.Kind)
		}
	}
}

// UserIDFromToken extracts the user id from a signed bearer token. The
// "user_id" claim is preferred, "sub" accepted as a fallback.
func UserIDFromToken(tokenString string) (string, error) {
	jwtSecret := []byte(os.Getenv("JWT_SECRET_KEY"))

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtSecret, nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token claims")
	}
	if id, ok := claims["user_id"].(string); ok && id != "" {
		return id, nil
	}
	if sub, ok := claims["sub"].(string); ok && sub != "" {
		return sub, nil
	}
	return "", fmt.Errorf("token carries no user id")
}
