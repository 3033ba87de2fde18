package auth

import (
	"context"
	"time"

	"github.com/jrsteele09/go-school-portal/routes"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Start arms the periodic validity check when a session is active. It returns
// whether the check is running. A login performed later does not arm it;
// the check belongs to the lifetime that started with an active session.
func (m *Manager) Start(ctx context.Context) bool {
	m.lifecycleLock.Lock()
	defer m.lifecycleLock.Unlock()

	if m.stopCheck != nil {
		return true
	}
	if !m.Active() {
		return false
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	m.stopCheck = cancel
	m.checkDone = done

	go m.runChecks(ctx, done)
	log.Debug().Dur("interval", m.checkInterval).Msg("session validity check armed")
	return true
}

// Close disarms the validity check and waits for an in-progress check to finish.
func (m *Manager) Close() {
	m.lifecycleLock.Lock()
	cancel, done := m.stopCheck, m.checkDone
	m.stopCheck, m.checkDone = nil, nil
	m.lifecycleLock.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	log.Debug().Msg("session validity check disarmed")
}

func (m *Manager) runChecks(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(m.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.CheckSession(ctx)
		}
	}
}

// CheckSession runs one validity check. Without an active session it does
// nothing. Otherwise it calls the verify endpoint through Do and logs the
// session out when the call does not succeed. A check cut short by ctx
// leaves the session alone. It returns whether a session is still active
// afterwards.
func (m *Manager) CheckSession(ctx context.Context) bool {
	if !m.Active() {
		return false
	}

	err := m.verify(ctx)
	switch {
	case err == nil:
		return true
	case ctx.Err() != nil:
		log.Debug().Err(err).Msg("validity check interrupted")
		return m.Active()
	case errors.Is(err, ErrSessionEnded):
		// Do has already logged out
		log.Info().Msg("session ended during validity check")
	default:
		log.Info().Err(err).Msg("session failed validity check")
		m.Logout()
	}
	return false
}

// VerifySession asks the backend whether the current access token is valid.
// A refresh is attempted on 401 like for any other call.
func (m *Manager) VerifySession(ctx context.Context) bool {
	return m.verify(ctx) == nil
}

func (m *Manager) verify(ctx context.Context) error {
	resp, err := m.Get(ctx, routes.EndpointTokenVerify)
	if err != nil {
		return err
	}
	defer discard(resp)
	if !isSuccess(resp.StatusCode) {
		return errors.Errorf("verify returned %d", resp.StatusCode)
	}
	return nil
}
