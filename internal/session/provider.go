package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/stemsi/institute-console/internal/model"
)

// CookieName is the cookie carrying the session id.
const CookieName = "console_session"

// Provider is the only code that reads or writes session state.
type Provider struct {
	store  Store
	ttl    time.Duration
	secure bool
	log    zerolog.Logger
}

// NewProvider creates a Provider over store.
func NewProvider(store Store, ttl time.Duration, secure bool, log zerolog.Logger) *Provider {
	return &Provider{
		store:  store,
		ttl:    ttl,
		secure: secure,
		log:    log.With().Str("component", "session").Logger(),
	}
}

// Current loads the session named by the request cookie.
// A malformed record is deleted together with the cookie.
func (p *Provider) Current(c *gin.Context) (*model.Session, error) {
	id, err := c.Cookie(CookieName)
	if err != nil || id == "" {
		return nil, ErrNoSession
	}

	sess, err := p.store.Load(c.Request.Context(), id)
	switch {
	case err == nil:
		return sess, nil
	case errors.Is(err, ErrMalformedSession):
		p.log.Warn().Err(err).Str("session_id", id).Msg("Discarding malformed session")
		_ = p.store.Delete(c.Request.Context(), id)
		p.clearCookie(c)
		return nil, err
	case errors.Is(err, ErrNoSession):
		p.clearCookie(c)
		return nil, err
	default:
		return nil, err
	}
}

// Start logs in: it carries over any other logins of the current session,
// applies login, and saves the result under a fresh id.
func (p *Provider) Start(c *gin.Context, login func(*model.Session)) (*model.Session, error) {
	ctx := c.Request.Context()
	next := &model.Session{CreatedAt: time.Now().UTC()}

	if prev, err := p.Current(c); err == nil {
		*next = *prev
		_ = p.store.Delete(ctx, prev.ID)
	}
	next.ID = uuid.New().String()
	login(next)

	if err := p.store.Save(ctx, next, p.ttl); err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	p.setCookie(c, next.ID)
	return next, nil
}

// Save persists changes to an existing session, e.g. a refreshed token.
func (p *Provider) Save(c *gin.Context, sess *model.Session) error {
	return p.store.Save(c.Request.Context(), sess, p.ttl)
}

// Forget removes one login from the session. If nothing is left the whole session ends.
func (p *Provider) Forget(c *gin.Context, drop func(*model.Session)) error {
	sess, err := p.Current(c)
	if err != nil {
		return nil
	}
	drop(sess)
	if sess.Teacher == nil && sess.Tokens == nil && sess.StudentID == 0 {
		return p.End(c)
	}
	return p.Save(c, sess)
}

// End deletes the session and its cookie.
func (p *Provider) End(c *gin.Context) error {
	defer p.clearCookie(c)
	id, err := c.Cookie(CookieName)
	if err != nil || id == "" {
		return nil
	}
	return p.store.Delete(c.Request.Context(), id)
}

func (p *Provider) setCookie(c *gin.Context, id string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, id, int(p.ttl.Seconds()), "/", "", p.secure, true)
}

func (p *Provider) clearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", "", p.secure, true)
}
