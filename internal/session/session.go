package session

import (
	"context"
	"sync"

	"homesurvey/internal/common/logger"
	"homesurvey/internal/envelope"
	"homesurvey/internal/models"
	"homesurvey/internal/storage"
)

// Ticket identifies one in-flight scan or preview read.
type Ticket struct {
	seq    uint64
	userID string
}

// Session is safe for concurrent use. Results of scans and preview reads
// are applied last-write-wins: only the newest ticket may complete, and a
// user switch invalidates everything in flight.
type Session struct {
	mu       sync.Mutex
	store    *envelope.Store
	log      logger.Logger
	userID   string
	analysis *models.Analysis

	scanSeq    uint64
	previewSeq uint64
	preview    string

	UserChanged     *Broadcaster[string]
	EnvelopeUpdated *Broadcaster[*models.Envelope]
}

func New(store *envelope.Store, log logger.Logger) *Session {
	return &Session{
		store:           store,
		log:             log,
		UserChanged:     NewBroadcaster[string](),
		EnvelopeUpdated: NewBroadcaster[*models.Envelope](),
	}
}

func (s *Session) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// Analysis returns the current analysis, or nil.
func (s *Session) Analysis() *models.Analysis {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.analysis
}

// Preview returns the locally read preview image.
func (s *Session) Preview() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.preview
}

// SetUser switches the active account. On a change all in-memory state is
// dropped, observers are told, and the new user's last envelope is loaded.
func (s *Session) SetUser(ctx context.Context, user *models.User) *models.Analysis {
	uid := storage.DeriveUserID(user)

	s.mu.Lock()
	if uid == s.userID {
		a := s.analysis
		s.mu.Unlock()
		return a
	}
	s.userID = uid
	s.analysis = nil
	s.preview = ""
	s.scanSeq++
	s.previewSeq++
	s.mu.Unlock()

	s.log.Info("active user changed", map[string]interface{}{"user_id": uid})
	s.UserChanged.Publish(uid)

	env, ok := s.store.Load(ctx, uid)
	if !ok {
		return nil
	}
	a := s.store.Sync(ctx, env, uid, "")

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.userID != uid || s.analysis != nil {
		return s.analysis
	}
	s.analysis = a
	return a
}

// BeginScan starts a scan. Completing an older ticket is a no-op.
func (s *Session) BeginScan() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scanSeq++
	return Ticket{seq: s.scanSeq, userID: s.userID}
}

func (s *Session) current(t Ticket, seq uint64) bool {
	return t.seq == seq && t.userID == s.userID
}

// CompleteScan applies env if t is still the newest scan of the active
// user. It reports whether env was applied.
func (s *Session) CompleteScan(ctx context.Context, t Ticket, env *models.Envelope) (*models.Analysis, bool) {
	s.mu.Lock()
	if !s.current(t, s.scanSeq) || env == nil {
		s.mu.Unlock()
		s.log.Debug("dropping stale scan result", map[string]interface{}{"ticket": t.seq})
		return nil, false
	}
	preview := s.preview
	s.mu.Unlock()

	saved := s.store.Save(ctx, env, t.userID)
	a := s.store.Sync(ctx, saved, t.userID, preview)

	s.mu.Lock()
	if !s.current(t, s.scanSeq) {
		s.mu.Unlock()
		return nil, false
	}
	s.analysis = a
	s.mu.Unlock()

	s.EnvelopeUpdated.Publish(saved)
	return a, true
}

// ApplyEnvelope adopts an envelope opened elsewhere, such as from history.
// Envelopes stamped for another user are ignored. Any scan in flight is
// superseded.
func (s *Session) ApplyEnvelope(ctx context.Context, env *models.Envelope) (*models.Analysis, bool) {
	t := s.BeginScan()
	if env == nil || (env.UserID != "" && env.UserID != t.userID) {
		return nil, false
	}
	return s.CompleteScan(ctx, t, env)
}

// BeginPreview starts reading a local preview image.
func (s *Session) BeginPreview() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.previewSeq++
	return Ticket{seq: s.previewSeq, userID: s.userID}
}

// CompletePreview stores dataURL unless a newer read started or the
// preview was cleared after t was issued.
func (s *Session) CompletePreview(t Ticket, dataURL string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.current(t, s.previewSeq) {
		return false
	}
	s.preview = dataURL
	return true
}

// ClearPreview drops the preview and invalidates reads in flight.
func (s *Session) ClearPreview() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.previewSeq++
	s.preview = ""
}

// Close releases observer channels.
func (s *Session) Close() {
	s.UserChanged.Close()
	s.EnvelopeUpdated.Close()
}
