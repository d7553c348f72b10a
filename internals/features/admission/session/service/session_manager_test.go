package service

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	sessionModel "ppdb_backend/internals/features/admission/session/model"
)

const testTimeout = 30 * time.Minute

type sessionKey struct {
	userID   uuid.UUID
	deviceID string
}

// fakeStore: store di memori untuk test; bisa dipaksa gagal.
type fakeStore struct {
	sessions map[sessionKey]*sessionModel.DeviceSession
	failAll  bool
	upserts  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{sessions: map[sessionKey]*sessionModel.DeviceSession{}}
}

var errStoreDown = errors.New("store down")

func (f *fakeStore) Get(userID uuid.UUID, deviceID string) (*sessionModel.DeviceSession, error) {
	if f.failAll {
		return nil, errStoreDown
	}
	s, ok := f.sessions[sessionKey{userID, deviceID}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeStore) Upsert(sess *sessionModel.DeviceSession) error {
	if f.failAll {
		return errStoreDown
	}
	f.upserts++
	cp := *sess
	f.sessions[sessionKey{sess.UserID, sess.DeviceID}] = &cp
	return nil
}

func (f *fakeStore) Touch(userID uuid.UUID, deviceID string, now time.Time) (int64, error) {
	if f.failAll {
		return 0, errStoreDown
	}
	s, ok := f.sessions[sessionKey{userID, deviceID}]
	if !ok {
		return 0, nil
	}
	s.LastSeenAt = now
	return 1, nil
}

func (f *fakeStore) Delete(userID uuid.UUID, deviceID string) error {
	if f.failAll {
		return errStoreDown
	}
	delete(f.sessions, sessionKey{userID, deviceID})
	return nil
}

func (f *fakeStore) ListByUser(userID uuid.UUID) ([]sessionModel.DeviceSession, error) {
	if f.failAll {
		return nil, errStoreDown
	}
	var out []sessionModel.DeviceSession
	for k, s := range f.sessions {
		if k.userID == userID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeStore) DeleteStaleBefore(cutoff time.Time, limit int) (int64, error) {
	if f.failAll {
		return 0, errStoreDown
	}
	var n int64
	for k, s := range f.sessions {
		if int(n) >= limit {
			break
		}
		if s.LastSeenAt.Before(cutoff) {
			delete(f.sessions, k)
			n++
		}
	}
	return n, nil
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time              { return c.t }
func (c *fakeClock) Advance(d time.Duration)     { c.t = c.t.Add(d) }

func newTestManager(t *testing.T) (*SessionManager, *fakeStore, *fakeClock) {
	t.Helper()
	store := newFakeStore()
	clock := &fakeClock{t: time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)}
	mgr := NewSessionManager(store, testTimeout, WithClock(clock.Now))
	return mgr, store, clock
}

func TestSessionLivenessBoundary(t *testing.T) {
	mgr, _, clock := newTestManager(t)
	userID := uuid.New()

	if err := mgr.Register(userID, "dev-1", "Mozilla/5.0 | Windows"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	// tepat di batas timeout: masih hidup
	clock.Advance(testTimeout)
	if err := mgr.CheckValidity(userID, "dev-1"); err != nil {
		t.Fatalf("sesi di batas timeout harus masih valid, dapat: %v", err)
	}

	// 1ms melewati batas: mati
	clock.Advance(time.Millisecond)
	if err := mgr.CheckValidity(userID, "dev-1"); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("sesi lewat timeout harus invalid, dapat: %v", err)
	}
}

func TestHeartbeatRefreshesLiveness(t *testing.T) {
	mgr, _, clock := newTestManager(t)
	userID := uuid.New()

	if err := mgr.Register(userID, "dev-1", "ua"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	// aktivitas terus-menerus menjaga sesi tetap hidup melewati timeout awal
	for i := 0; i < 3; i++ {
		clock.Advance(20 * time.Minute)
		mgr.Heartbeat(userID, "dev-1")
	}
	if err := mgr.CheckValidity(userID, "dev-1"); err != nil {
		t.Fatalf("sesi dengan heartbeat rutin harus valid, dapat: %v", err)
	}
}

func TestHeartbeatIdempotentUnderRapidFiring(t *testing.T) {
	mgr, store, _ := newTestManager(t)
	userID := uuid.New()

	if err := mgr.Register(userID, "dev-1", "ua"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	before := store.upserts

	// scroll+mousemove dalam tick yang sama: tetap satu record, tanpa record baru
	for i := 0; i < 10; i++ {
		mgr.Heartbeat(userID, "dev-1")
	}
	if len(store.sessions) != 1 {
		t.Fatalf("heartbeat N kali harus tetap 1 record, dapat %d", len(store.sessions))
	}
	if store.upserts != before {
		t.Fatalf("heartbeat tidak boleh membuat record baru (upserts %d -> %d)", before, store.upserts)
	}
}

func TestHeartbeatDoesNotResurrectPurgedSession(t *testing.T) {
	mgr, store, _ := newTestManager(t)
	userID := uuid.New()

	if err := mgr.Register(userID, "dev-1", "ua"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	// purge remote (admin / reaper)
	if err := store.Delete(userID, "dev-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	mgr.Heartbeat(userID, "dev-1")

	if len(store.sessions) != 0 {
		t.Fatal("heartbeat tidak boleh menghidupkan kembali sesi yang sudah dihapus")
	}
	if err := mgr.CheckValidity(userID, "dev-1"); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("sesi yang dihapus harus invalid, dapat: %v", err)
	}
}

func TestHeartbeatStoreFailureDoesNotInvalidate(t *testing.T) {
	mgr, store, _ := newTestManager(t)
	userID := uuid.New()

	if err := mgr.Register(userID, "dev-1", "ua"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	// gangguan store transien saat heartbeat: bukan alasan sign-out
	store.failAll = true
	mgr.Heartbeat(userID, "dev-1")
	store.failAll = false

	if err := mgr.CheckValidity(userID, "dev-1"); err != nil {
		t.Fatalf("kegagalan tulis heartbeat tidak boleh mematikan sesi, dapat: %v", err)
	}
}

func TestCheckValidityFailsClosedOnStoreError(t *testing.T) {
	mgr, store, _ := newTestManager(t)
	userID := uuid.New()

	if err := mgr.Register(userID, "dev-1", "ua"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	store.failAll = true
	if err := mgr.CheckValidity(userID, "dev-1"); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("kegagalan baca store harus fail closed ke invalid, dapat: %v", err)
	}
}

func TestRemoveIdempotent(t *testing.T) {
	mgr, _, _ := newTestManager(t)
	userID := uuid.New()

	// hapus tanpa record: no-op, bukan error
	if err := mgr.Remove(userID, "dev-x"); err != nil {
		t.Fatalf("Remove tanpa record harus no-op, dapat: %v", err)
	}

	if err := mgr.Register(userID, "dev-x", "ua"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := mgr.Remove(userID, "dev-x"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := mgr.Remove(userID, "dev-x"); err != nil {
		t.Fatalf("Remove kedua kali harus tetap no-op, dapat: %v", err)
	}
}

func TestOtherLiveSessions(t *testing.T) {
	mgr, _, clock := newTestManager(t)
	userID := uuid.New()

	if err := mgr.Register(userID, "laptop", "Mozilla | Windows"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	clock.Advance(40 * time.Minute) // laptop jadi basi
	if err := mgr.Register(userID, "hp", "Mozilla | Android"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := mgr.Register(userID, "warnet", "Mozilla | Linux"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	others := mgr.OtherLiveSessions(userID, "warnet")
	if len(others) != 1 {
		t.Fatalf("harus cuma 1 sesi lain yang hidup (hp), dapat %d", len(others))
	}
	if others[0].DeviceID != "hp" {
		t.Fatalf("sesi lain yang dilaporkan harus hp, dapat %s", others[0].DeviceID)
	}
}

func TestOtherLiveSessionsAdvisoryOnStoreError(t *testing.T) {
	mgr, store, _ := newTestManager(t)
	store.failAll = true

	// advisory saja: error store menghasilkan daftar kosong, bukan kegagalan login
	if got := mgr.OtherLiveSessions(uuid.New(), "dev"); got != nil {
		t.Fatalf("scan sesi lain saat store error harus nil, dapat: %v", got)
	}
}

func TestReapStaleRemovesOnlyStale(t *testing.T) {
	mgr, store, clock := newTestManager(t)
	userA, userB := uuid.New(), uuid.New()

	if err := mgr.Register(userA, "dev-1", "ua"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	clock.Advance(testTimeout + time.Minute)
	if err := mgr.Register(userB, "dev-2", "ua"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	n, err := mgr.ReapStale(100)
	if err != nil {
		t.Fatalf("ReapStale: %v", err)
	}
	if n != 1 {
		t.Fatalf("reaper harus menghapus tepat 1 sesi basi, dapat %d", n)
	}
	if _, ok := store.sessions[sessionKey{userB, "dev-2"}]; !ok {
		t.Fatal("sesi yang masih hidup tidak boleh ikut terhapus")
	}
}
