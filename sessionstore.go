package quillpress

import (
	"net/http"

	"github.com/gorilla/sessions"
)

// SessionCookieName is the cookie that carries the opaque session id.
const SessionCookieName = "sessionid"

const userSessionKey = "user"

// SessionStore is a gorilla/sessions Store backed by the sessions table.
// The cookie holds only the session id; the expiry lives in the database,
// so a session can be revoked server-side.
type SessionStore struct {
	store   *Store
	Options *sessions.Options
}

// NewSessionStore creates a SessionStore. opts is copied into every session.
func NewSessionStore(s *Store, opts *sessions.Options) *SessionStore {
	if opts == nil {
		opts = &sessions.Options{Path: "/", HttpOnly: true}
	}
	return &SessionStore{store: s, Options: opts}
}

// Get returns the session for the request, creating it on first use.
func (s *SessionStore) Get(r *http.Request, name string) (*sessions.Session, error) {
	return sessions.GetRegistry(r).Get(s, name)
}

// New resolves the session id in the request cookie. A session is not new
// only when its id maps to a live row, in which case the user value is set.
func (s *SessionStore) New(r *http.Request, name string) (*sessions.Session, error) {
	sess := sessions.NewSession(s, name)
	opts := *s.Options
	sess.Options = &opts
	sess.IsNew = true

	cookie, err := r.Cookie(name)
	if err != nil || cookie.Value == "" {
		return sess, nil
	}
	user, err := s.store.CurrentUser(r.Context(), cookie.Value)
	if err != nil {
		return sess, err
	}
	sess.ID = cookie.Value
	if user != nil {
		sess.Values[userSessionKey] = *user
		sess.IsNew = false
	}
	return sess, nil
}

// Save writes the session cookie. A negative MaxAge destroys the session
// row and expires the cookie. Sessions without a user write nothing: ids
// are only ever minted by Store.Authenticate.
func (s *SessionStore) Save(r *http.Request, w http.ResponseWriter, sess *sessions.Session) error {
	if sess.Options.MaxAge < 0 {
		if sess.ID != "" {
			if err := s.store.DestroySession(r.Context(), sess.ID); err != nil {
				return err
			}
		}
		http.SetCookie(w, sessions.NewCookie(sess.Name(), "", sess.Options))
		return nil
	}
	if _, ok := sess.Values[userSessionKey].(User); !ok || sess.ID == "" {
		return nil
	}
	http.SetCookie(w, sessions.NewCookie(sess.Name(), sess.ID, sess.Options))
	return nil
}
