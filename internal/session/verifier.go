package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jobtrail/trailctl/internal/services"
	"github.com/jobtrail/trailctl/internal/shared"
	"github.com/jobtrail/trailctl/internal/store"
)

// DefaultVerifyTimeout bounds the verification round-trip so a slow backend
// cannot leave the client stuck in a loading state.
const DefaultVerifyTimeout = 10 * time.Second

// Verifier performs the single authoritative session check per process.
//
// The first call to Run does the round-trip; later calls return the cached
// verdict. Whatever happens, the session's loading flag drops exactly once.
type Verifier struct {
	session *Session
	state   store.Store
	client  *services.Client
	logger  *log.Logger
	timeout time.Duration

	once    sync.Once
	profile *services.Profile
	err     error
}

// NewVerifier creates a Verifier with the default timeout.
func NewVerifier(sess *Session, state store.Store, client *services.Client, logger *log.Logger) *Verifier {
	return &Verifier{
		session: sess,
		state:   state,
		client:  client,
		logger:  logger,
		timeout: DefaultVerifyTimeout,
	}
}

// SetTimeout overrides the verification timeout. Must be called before Run.
func (v *Verifier) SetTimeout(d time.Duration) {
	v.timeout = d
}

// Run verifies the session exactly once and returns the profile fetched
// along the way. A nil profile with nil error means verification was
// skipped because no profile endpoint is configured (fail closed).
func (v *Verifier) Run(ctx context.Context) (*services.Profile, error) {
	v.once.Do(func() {
		v.profile, v.err = v.verify(ctx)
	})
	return v.profile, v.err
}

func (v *Verifier) verify(ctx context.Context) (profile *services.Profile, err error) {
	// The loading flag must drop exactly once on every path.
	defer v.session.finishLoading()

	if token, terr := v.state.Token(); terr == nil && token != "" {
		v.logger.Debug("found stored token, verifying with bearer credential")
	} else {
		v.logger.Debug("no stored token, verifying with cookie credential")
	}

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	profile, err = v.client.Profile(ctx)
	if err != nil {
		v.session.setVerified(false)
		if cerr := v.state.ClearCredentials(); cerr != nil {
			v.logger.Warn("failed to clear credentials after rejected verification", "error", cerr)
		}
		if errors.Is(err, shared.ErrMissingConfig) {
			// Unconfigured endpoint is not fatal, just logged-out.
			v.logger.Warn("profile endpoint not configured, failing closed")
			return nil, nil
		}
		v.logger.Warn("session verification failed", "error", err)
		return nil, err
	}

	// Credential rotation: persist a fresh token delivered with the profile.
	if token := profile.Credential(); token != "" {
		if serr := v.state.SetToken(token); serr != nil {
			v.logger.Warn("failed to persist rotated token", "error", serr)
		} else {
			v.logger.Debug("rotated token persisted")
		}
	}

	if serr := v.state.SetAuthHint(true); serr != nil {
		v.logger.Warn("failed to persist auth hint", "error", serr)
	}
	v.session.setVerified(true)
	v.logger.Info("session verified")

	return profile, nil
}
